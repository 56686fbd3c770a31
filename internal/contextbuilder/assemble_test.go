package contextbuilder

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/msami123/Web-chat-bot/internal/domain"
)

func TestAssemble_Headers(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "we offer savings accounts", Source: "faq.pdf", Page: "3", Section: "Accounts"},
		{Text: "second", Source: "site"},
	}
	want := "[1] (source=faq.pdf, page=3, section=Accounts)\nwe offer savings accounts" +
		"\n\n" +
		"[2] (source=site, page=, section=)\nsecond"
	assert.Equal(t, want, Assemble(chunks, DefaultMaxChars))
}

func TestAssemble_Empty(t *testing.T) {
	assert.Equal(t, "", Assemble(nil, DefaultMaxChars))
}

func TestAssemble_TruncatesToExactBudget(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "we offer savings accounts with competitive rates", Source: "a"},
		{Text: "transfers are processed within one business day", Source: "b"},
	}
	full := Assemble(chunks, DefaultMaxChars)
	assert.Greater(t, len(full), 50)

	got := Assemble(chunks, 50)
	assert.Len(t, got, 50)
	assert.Equal(t, full[:50], got)
}

func TestAssemble_CutsSecondChunkMidWord(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "short", Source: "a"},
		{Text: "transfers are processed within one business day", Source: "b"},
	}
	first := "[1] (source=a, page=, section=)\nshort"
	budget := len(first) + len("\n\n[2] (source=b, page=, section=)\ntransf")

	got := Assemble(chunks, budget)
	assert.Len(t, got, budget)
	assert.True(t, strings.HasSuffix(got, "\ntransf"))
}

func TestAssemble_BudgetBound(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: strings.Repeat("نحن نقدم خدمات التحويل ", 20), Source: "ar.json", Lang: "ar"},
		{Text: strings.Repeat("savings ", 30), Source: "en.json", Lang: "en"},
	}
	for _, n := range []int{-1, 0, 1, 7, 50, 333, 10000} {
		got := Assemble(chunks, n)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), max(n, 0), "budget %d", n)
		assert.True(t, utf8.ValidString(got), "budget %d", n)
	}
}

func TestAssemble_CountsCharactersNotBytes(t *testing.T) {
	chunks := []domain.Chunk{{Text: "تحويل", Source: "s"}}
	header := "[1] (source=s, page=, section=)\n"
	got := Assemble(chunks, len(header)+3)
	assert.Equal(t, header+"تحو", got)
}
