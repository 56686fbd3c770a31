// Package retriever ranks indexed chunks against a query using lexical
// similarity plus a language-match bonus.
package retriever

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/msami123/Web-chat-bot/internal/domain"
	"github.com/msami123/Web-chat-bot/internal/index"
	"github.com/msami123/Web-chat-bot/internal/langdetect"
	"github.com/msami123/Web-chat-bot/internal/logger"
	"github.com/msami123/Web-chat-bot/internal/metrics"
)

const (
	// DefaultTopK is used when a non-positive k is requested.
	DefaultTopK = 5
	// LanguageBonus is added to the similarity of chunks whose declared
	// language matches the query language. Scores are not normalised, so
	// only the resulting order is meaningful.
	LanguageBonus = 0.08
)

// Scorer ranks the chunks of the index currently published by a holder.
type Scorer struct {
	holder *index.Holder
	bonus  float64
	logger *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLanguageBonus overrides LanguageBonus.
func WithLanguageBonus(bonus float64) Option {
	return func(s *Scorer) { s.bonus = bonus }
}

// WithLogger sets the scorer logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scorer) { s.logger = logger.OrNop(l) }
}

// New creates a scorer reading from holder.
func New(holder *index.Holder, opts ...Option) *Scorer {
	s := &Scorer{holder: holder, bonus: LanguageBonus, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the k most relevant chunks for text, highest first.
func (s *Scorer) Score(text, lang string, k int) []domain.Chunk {
	ranked := s.Rank(text, lang, k)
	out := make([]domain.Chunk, len(ranked))
	for i, r := range ranked {
		out[i] = r.Chunk
	}
	return out
}

// Rank scores every chunk against text and returns the top min(k, N)
// with their scores. lang is a language tag such as "ar", "en-US" or
// "auto"; only "ar" and "en" prefixes earn a bonus. Chunks with equal
// scores keep their corpus order.
func (s *Scorer) Rank(text, lang string, k int) []domain.ScoredChunk {
	start := time.Now()
	idx := s.holder.Load()
	if k <= 0 {
		k = DefaultTopK
	}

	queryLang := ""
	switch {
	case langdetect.Matches(lang, langdetect.Arabic):
		queryLang = langdetect.Arabic
	case langdetect.Matches(lang, langdetect.English):
		queryLang = langdetect.English
	}

	q := idx.Transform(text)
	sims := idx.Similarities(q)
	scored := make([]domain.ScoredChunk, len(sims))
	for i, sim := range sims {
		ch := idx.Chunk(i)
		score := sim
		if langdetect.Matches(ch.Lang, queryLang) {
			score += s.bonus
		}
		scored[i] = domain.ScoredChunk{Chunk: ch, Position: i, Similarity: sim, Score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k > len(scored) {
		k = len(scored)
	}
	out := scored[:k:k]

	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	metrics.RetrievedChunks.Observe(float64(len(out)))
	s.logger.Debug("retrieved chunks",
		zap.String("lang", queryLang),
		zap.Int("query_terms", q.NonZero()),
		zap.Int("k", k),
		zap.Int("corpus", idx.Len()),
	)
	return out
}
