// Package chat answers user questions from the knowledge base: it
// retrieves relevant chunks, assembles the model context and degrades to
// an extractive answer when the model cannot be reached.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/msami123/Web-chat-bot/internal/contextbuilder"
	"github.com/msami123/Web-chat-bot/internal/domain"
	"github.com/msami123/Web-chat-bot/internal/index"
	"github.com/msami123/Web-chat-bot/internal/langdetect"
	"github.com/msami123/Web-chat-bot/internal/logger"
	"github.com/msami123/Web-chat-bot/internal/metrics"
	"github.com/msami123/Web-chat-bot/internal/prompt"
	"github.com/msami123/Web-chat-bot/internal/retriever"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoGenerator  = errors.New("no language model configured")
	ErrNoLoader     = errors.New("no corpus loader configured")
)

// AnswerCache memoises generated answers.
type AnswerCache interface {
	GetOrCompute(ctx context.Context, lang, question string, compute func() (string, error)) (string, bool, error)
	Invalidate(ctx context.Context) error
}

// CorpusLoader reads the knowledge corpus.
type CorpusLoader interface {
	Load(ctx context.Context, paths []string) ([]domain.Chunk, error)
}

// Config wires the collaborators of a Service. Generator, Cache and
// Loader are optional.
type Config struct {
	Retriever  domain.Retriever
	Generator  domain.Generator
	Summarizer domain.Summarizer
	System     prompt.System
	Cache      AnswerCache

	Loader      CorpusLoader
	Holder      *index.Holder
	CorpusPaths []string
	Index       index.Options

	TopK int
	// MaxContextChars is the context budget in characters. Zero uses
	// contextbuilder.DefaultMaxChars; a negative budget sends no context.
	MaxContextChars  int
	SummarySentences int

	Logger *zap.Logger
}

// Reply is the answer to one question.
type Reply struct {
	Text     string         `json:"text"`
	Lang     string         `json:"lang"`
	Chunks   []domain.Chunk `json:"chunks"`
	Context  string         `json:"-"`
	Cached   bool           `json:"cached"`
	Degraded bool           `json:"degraded"`
}

// Service orchestrates retrieval and generation for conversations.
type Service struct {
	cfg        Config
	systemText string
	logger     *zap.Logger
}

// NewService creates a chat service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Retriever == nil {
		return nil, errors.New("chat: retriever is required")
	}
	if cfg.Summarizer == nil {
		return nil, errors.New("chat: summarizer is required")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = retriever.DefaultTopK
	}
	if cfg.MaxContextChars == 0 {
		cfg.MaxContextChars = contextbuilder.DefaultMaxChars
	}
	if cfg.SummarySentences <= 0 {
		cfg.SummarySentences = 3
	}
	return &Service{
		cfg:        cfg,
		systemText: cfg.System.Text(),
		logger:     logger.OrNop(cfg.Logger).With(zap.String("component", "chat")),
	}, nil
}

// Ask answers text within conv. The question and the answer are both
// appended to the conversation. Model failures do not fail the call: the
// reply falls back to an extractive answer and Degraded is set. Only an
// empty question or a cancelled context return an error.
func (s *Service) Ask(ctx context.Context, conv *Conversation, text string) (Reply, error) {
	// Language is detected on the text as typed; surrounding whitespace
	// counts towards the Arabic share.
	lang := langdetect.Detect(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}
	conv.Append(domain.RoleUser, text)

	chunks := s.cfg.Retriever.Score(text, lang, s.cfg.TopK)
	knowledge := contextbuilder.Assemble(chunks, s.cfg.MaxContextChars)
	reply := Reply{Lang: lang, Chunks: chunks, Context: knowledge}

	answer, cached, err := s.generate(ctx, lang, text, prompt.UserMessage(text, lang, knowledge))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Reply{}, fmt.Errorf("ask: %w", ctxErr)
		}
		s.logger.Warn("generation failed, answering offline",
			zap.String("conversation", conv.ID.String()),
			zap.Error(err),
		)
		answer = s.offline(lang, chunks)
		reply.Degraded = true
	}
	reply.Text = answer
	reply.Cached = cached
	conv.Append(domain.RoleAssistant, answer)
	return reply, nil
}

// AskPending answers the question queued in conv, if any.
func (s *Service) AskPending(ctx context.Context, conv *Conversation) (Reply, bool, error) {
	q, ok := conv.TakePending()
	if !ok {
		return Reply{}, false, nil
	}
	r, err := s.Ask(ctx, conv, q)
	return r, true, err
}

func (s *Service) generate(ctx context.Context, lang, question, user string) (string, bool, error) {
	if s.cfg.Generator == nil {
		return "", false, ErrNoGenerator
	}
	call := func() (string, error) {
		return s.cfg.Generator.Generate(ctx, s.systemText, user)
	}
	if s.cfg.Cache == nil {
		answer, err := call()
		return answer, false, err
	}
	return s.cfg.Cache.GetOrCompute(ctx, lang, question, call)
}

// offline answers from the retrieved chunks alone.
func (s *Service) offline(lang string, chunks []domain.Chunk) string {
	texts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if t := strings.TrimSpace(ch.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return s.cfg.System.Fallback(lang)
	}
	summary, err := s.cfg.Summarizer.Summarize(strings.Join(texts, "\n"), s.cfg.SummarySentences)
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			s.logger.Warn("offline summary failed", zap.Error(err))
		}
		return s.cfg.System.Fallback(lang)
	}
	return summary
}

// Retrieve ranks the corpus for text. An empty lang is detected from text.
func (s *Service) Retrieve(text, lang string, k int) []domain.ScoredChunk {
	if lang == "" {
		lang = langdetect.Detect(text)
	}
	return s.cfg.Retriever.Rank(text, lang, k)
}

// Context retrieves the top k chunks for text and assembles them within
// maxChars characters. Non-positive k and maxChars use the configured values.
func (s *Service) Context(text, lang string, k, maxChars int) (string, []domain.Chunk) {
	if lang == "" {
		lang = langdetect.Detect(text)
	}
	if k <= 0 {
		k = s.cfg.TopK
	}
	if maxChars <= 0 {
		maxChars = s.cfg.MaxContextChars
	}
	chunks := s.cfg.Retriever.Score(text, lang, k)
	return contextbuilder.Assemble(chunks, maxChars), chunks
}

// Reload rebuilds the index from the corpus and swaps it in. On failure
// the previous index keeps serving.
func (s *Service) Reload(ctx context.Context) (*index.Index, error) {
	if s.cfg.Loader == nil || s.cfg.Holder == nil {
		return nil, ErrNoLoader
	}
	chunks, err := s.cfg.Loader.Load(ctx, s.cfg.CorpusPaths)
	if err != nil {
		return nil, fmt.Errorf("reload corpus: %w", err)
	}
	idx, err := index.Build(chunks, s.cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("reload index: %w", err)
	}
	s.cfg.Holder.Swap(idx)
	metrics.ObserveIndex(idx.Len(), idx.VocabularySize())
	if s.cfg.Cache != nil {
		if err := s.cfg.Cache.Invalidate(ctx); err != nil {
			s.logger.Warn("cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("index reloaded",
		zap.Int("chunks", idx.Len()),
		zap.Int("vocabulary", idx.VocabularySize()),
	)
	return idx, nil
}
