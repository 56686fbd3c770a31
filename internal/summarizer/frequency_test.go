package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_PicksFrequentSentencesInOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Riyalak is a wallet app. The weather is nice. " +
		"Riyalak wallet supports transfers. Riyalak wallet has cards."

	got, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "Riyalak wallet supports transfers. Riyalak wallet has cards.", got)
}

func TestSummarize_ArabicAndLines(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "تطبيق ريالك محفظة رقمية؟\nتطبيق ريالك يدعم التحويل\nالطقس جميل"

	got, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "تطبيق ريالك محفظة رقمية؟ تطبيق ريالك يدعم التحويل", got)
}

func TestSummarize_Edges(t *testing.T) {
	s := NewFrequencySummarizer()

	got, err := s.Summarize("   ", 3)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = s.Summarize("One sentence only.", 0)
	require.NoError(t, err)
	assert.Equal(t, "One sentence only.", got)

	got, err = s.Summarize("A b. C d.", 10)
	require.NoError(t, err)
	assert.Equal(t, "A b. C d.", got)
}
