package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msami123/Web-chat-bot/internal/domain"
)

func bankCorpus() []domain.Chunk {
	return []domain.Chunk{
		{Text: "we offer savings accounts", Lang: "en"},
		{Text: "نحن نقدم خدمات التحويل", Lang: "ar"},
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	_, err := Build(nil, DefaultOptions())
	require.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Build([]domain.Chunk{}, DefaultOptions())
	require.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestBuild_DegenerateVocabulary(t *testing.T) {
	cases := map[string][]domain.Chunk{
		"empty texts":      {{Text: ""}, {Text: "  "}},
		"single letters":   {{Text: "a b c"}, {Text: "x y"}},
		"identical chunks": {{Text: "hello world"}, {Text: "hello world"}},
		"single chunk":     {{Text: "only one chunk here"}},
	}
	for name, chunks := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Build(chunks, DefaultOptions())
			require.ErrorIs(t, err, ErrDegenerateVocabulary)
		})
	}
}

func TestBuild_VocabularyWithBigrams(t *testing.T) {
	idx, err := Build(bankCorpus(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())
	// 4 unigrams + 3 bigrams per chunk, nothing shared
	assert.Equal(t, 14, idx.VocabularySize())
	assert.True(t, idx.HasTerm("savings"))
	assert.True(t, idx.HasTerm("savings accounts"))
	assert.True(t, idx.HasTerm("التحويل"))
	assert.True(t, idx.HasTerm("خدمات التحويل"))
	assert.False(t, idx.HasTerm("account"))
}

func TestBuild_MaxDFDropsNearUniversalTerms(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "bank savings"},
		{Text: "bank loans"},
		{Text: "bank cards"},
	}
	idx, err := Build(chunks, DefaultOptions())
	require.NoError(t, err)

	assert.False(t, idx.HasTerm("bank"))
	assert.True(t, idx.HasTerm("savings"))
	assert.True(t, idx.HasTerm("bank savings"))

	idx, err = Build(chunks, Options{MinDF: 1, MaxDF: 1.0, NgramMax: 2})
	require.NoError(t, err)
	assert.True(t, idx.HasTerm("bank"))
}

func TestBuild_MinDF(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "card limit"},
		{Text: "card fees"},
		{Text: "loan fees"},
	}
	idx, err := Build(chunks, Options{MinDF: 2, MaxDF: 1.0, NgramMax: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, idx.VocabularySize())
	assert.True(t, idx.HasTerm("card"))
	assert.True(t, idx.HasTerm("fees"))
	assert.False(t, idx.HasTerm("limit"))
}

func TestBuild_SmoothedIDF(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "bank savings"},
		{Text: "bank loans"},
		{Text: "cards"},
	}
	idx, err := Build(chunks, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, math.Log(4.0/2.0)+1, idx.IDF("savings"), 1e-12)
	assert.InDelta(t, math.Log(4.0/3.0)+1, idx.IDF("bank"), 1e-12)
	assert.Zero(t, idx.IDF("unknown"))
}

func TestBuild_VectorsAreNormalised(t *testing.T) {
	idx, err := Build(bankCorpus(), DefaultOptions())
	require.NoError(t, err)

	for i := 0; i < idx.Len(); i++ {
		v := idx.vectors[i]
		assert.InDelta(t, 1.0, v.Dot(v), 1e-9)
		assert.InDelta(t, 1.0, idx.Transform(idx.Chunk(i).Text).Dot(v), 1e-9)
	}
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	chunks := bankCorpus()
	idx, err := Build(chunks, DefaultOptions())
	require.NoError(t, err)

	chunks[0].Text = "mutated"
	assert.Equal(t, "we offer savings accounts", idx.Chunk(0).Text)

	out := idx.Chunks()
	out[1].Source = "mutated"
	assert.Empty(t, idx.Chunk(1).Source)
}

func TestTransform_DropsUnknownTerms(t *testing.T) {
	idx, err := Build(bankCorpus(), DefaultOptions())
	require.NoError(t, err)

	q := idx.Transform("savings account")
	assert.Equal(t, 1, q.NonZero())

	sims := idx.Similarities(q)
	require.Len(t, sims, 2)
	assert.InDelta(t, 1/math.Sqrt(7), sims[0], 1e-9)
	assert.Zero(t, sims[1])

	zero := idx.Transform("completely unrelated words")
	assert.True(t, zero.IsZero())
	assert.Equal(t, []float64{0, 0}, idx.Similarities(zero))
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(bankCorpus(), DefaultOptions())
	require.NoError(t, err)
	b, err := Build(bankCorpus(), DefaultOptions())
	require.NoError(t, err)

	q := "savings خدمات"
	assert.Equal(t, a.Similarities(a.Transform(q)), b.Similarities(b.Transform(q)))
}
