// Package corpus loads knowledge sources into an ordered chunk corpus.
package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/msami123/Web-chat-bot/internal/domain"
	"github.com/msami123/Web-chat-bot/internal/logger"
)

// Loader reads knowledge files and returns their chunks in file order.
//
// Supported inputs:
//   - .json knowledge files: {"chunks": [{"text", "source", "page", "section", "lang"}]}
//   - .txt and .md documents, split by the chunker
//   - .pdf documents, one document per page, split by the chunker
type Loader struct {
	chunker domain.Chunker
	logger  *zap.Logger
}

// NewLoader creates a loader. chunker is used for plain text and PDF input.
func NewLoader(chunker domain.Chunker, l *zap.Logger) *Loader {
	return &Loader{chunker: chunker, logger: logger.OrNop(l)}
}

// Load expands globs in paths and loads every supported file. It fails with
// domain.ErrEmptyCorpus when nothing was loaded.
func (l *Loader) Load(ctx context.Context, paths []string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad corpus pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			loaded, err := l.loadFile(m)
			if err != nil {
				return nil, err
			}
			l.logger.Debug("loaded corpus file", zap.String("path", m), zap.Int("chunks", len(loaded)))
			chunks = append(chunks, loaded...)
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("load %s: %w", strings.Join(paths, ", "), domain.ErrEmptyCorpus)
	}
	return chunks, nil
}

func (l *Loader) loadFile(path string) ([]domain.Chunk, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadKnowledgeFile(path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return l.chunker.Chunk(domain.Document{
			ID:      documentID(path),
			Path:    path,
			Source:  filepath.Base(path),
			Content: string(data),
		})
	case ".pdf":
		return l.loadPDF(path)
	default:
		l.logger.Debug("skipping unsupported corpus file", zap.String("path", path))
		return nil, nil
	}
}
