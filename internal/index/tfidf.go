// Package index builds an immutable TF-IDF representation of a chunk corpus.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/msami123/Web-chat-bot/internal/domain"
)

// Options controls vocabulary construction.
type Options struct {
	// MinDF is the minimum number of chunks a term must appear in.
	MinDF int
	// MaxDF is the maximum fraction of chunks a term may appear in.
	MaxDF float64
	// NgramMax is the longest word n-gram indexed; 2 adds bigrams.
	NgramMax int
}

// DefaultOptions returns unigrams and bigrams with min_df=1, max_df=0.95.
func DefaultOptions() Options {
	return Options{MinDF: 1, MaxDF: 0.95, NgramMax: 2}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinDF < 1 {
		o.MinDF = d.MinDF
	}
	if o.MaxDF <= 0 || o.MaxDF > 1 {
		o.MaxDF = d.MaxDF
	}
	if o.NgramMax < 1 {
		o.NgramMax = d.NgramMax
	}
	return o
}

// Index is a read-only vocabulary, IDF table and per-chunk weight vectors.
// It is never mutated after Build and is safe for concurrent use.
type Index struct {
	opts       Options
	chunks     []domain.Chunk
	vocabulary map[string]int
	idf        []float64
	vectors    []Vector
}

// Build tokenizes every chunk into unigrams and n-grams, filters terms by
// document frequency and weights each chunk with smoothed TF-IDF.
func Build(chunks []domain.Chunk, opts Options) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}
	opts = opts.withDefaults()

	// Term counts per chunk and document frequencies
	counts := make([]map[string]int, len(chunks))
	df := make(map[string]int)
	for i, ch := range chunks {
		tc := make(map[string]int)
		for _, term := range analyze(ch.Text, opts.NgramMax) {
			tc[term]++
		}
		for term := range tc {
			df[term]++
		}
		counts[i] = tc
	}

	n := float64(len(chunks))
	maxCount := opts.MaxDF * n
	terms := make([]string, 0, len(df))
	for term, c := range df {
		if c < opts.MinDF || float64(c) > maxCount {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("build index over %d chunks: %w", len(chunks), ErrDegenerateVocabulary)
	}
	// Create stable ordering for vocabulary
	sort.Strings(terms)

	idx := &Index{
		opts:       opts,
		chunks:     append([]domain.Chunk(nil), chunks...),
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		vectors:    make([]Vector, len(chunks)),
	}
	for i, term := range terms {
		idx.vocabulary[term] = i
		// Smoothed IDF
		idx.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	for i, tc := range counts {
		idx.vectors[i] = idx.weigh(tc)
	}
	return idx, nil
}

// weigh turns raw term counts into an L2-normalised TF-IDF vector,
// dropping terms outside the vocabulary.
func (idx *Index) weigh(tc map[string]int) Vector {
	w := make(map[int]float64, len(tc))
	for term, c := range tc {
		if dim, ok := idx.vocabulary[term]; ok {
			w[dim] = float64(c) * idx.idf[dim]
		}
	}
	return newVector(w)
}

// Transform projects text into the index space using the vocabulary and
// IDF weights fixed at build time.
func (idx *Index) Transform(text string) Vector {
	tc := make(map[string]int)
	for _, term := range analyze(text, idx.opts.NgramMax) {
		tc[term]++
	}
	return idx.weigh(tc)
}

// Similarities returns the dot product of q with every chunk vector, in
// corpus order.
func (idx *Index) Similarities(q Vector) []float64 {
	out := make([]float64, len(idx.vectors))
	if q.IsZero() {
		return out
	}
	for i, v := range idx.vectors {
		out[i] = v.Dot(q)
	}
	return out
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int { return len(idx.chunks) }

// Chunk returns the i-th chunk in corpus order.
func (idx *Index) Chunk(i int) domain.Chunk { return idx.chunks[i] }

// Chunks returns a copy of the corpus in insertion order.
func (idx *Index) Chunks() []domain.Chunk {
	return append([]domain.Chunk(nil), idx.chunks...)
}

// VocabularySize returns the number of retained terms and n-grams.
func (idx *Index) VocabularySize() int { return len(idx.vocabulary) }

// HasTerm reports whether term survived document-frequency filtering.
func (idx *Index) HasTerm(term string) bool {
	_, ok := idx.vocabulary[term]
	return ok
}

// IDF returns the inverse document frequency of term, or 0 if unknown.
func (idx *Index) IDF(term string) float64 {
	if dim, ok := idx.vocabulary[term]; ok {
		return idx.idf[dim]
	}
	return 0
}
