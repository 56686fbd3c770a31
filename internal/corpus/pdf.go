package corpus

import (
	"fmt"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/msami123/Web-chat-bot/internal/domain"
)

// loadPDF extracts plain text page by page so every chunk carries the page
// it came from.
func (l *Loader) loadPDF(path string) ([]domain.Chunk, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	id := documentID(path)
	source := filepath.Base(path)
	var chunks []domain.Chunk
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read pdf %s page %d: %w", path, n, err)
		}
		pageChunks, err := l.chunker.Chunk(domain.Document{
			ID:      fmt.Sprintf("%s:%d", id, n),
			Path:    path,
			Source:  source,
			Page:    domain.IntLocator(n),
			Content: text,
		})
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, pageChunks...)
	}
	return chunks, nil
}
