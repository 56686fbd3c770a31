// Package contextbuilder serializes ranked chunks into the bounded
// knowledge block handed to the generative model.
package contextbuilder

import (
	"fmt"
	"strings"

	"github.com/msami123/Web-chat-bot/internal/domain"
)

// DefaultMaxChars is the default context budget in characters.
const DefaultMaxChars = 8000

// Assemble renders each chunk in rank order as a provenance header line
// followed by its text, separates chunks with a blank line and cuts the
// result to at most maxChars characters. The cut may fall inside a chunk.
func Assemble(chunks []domain.Chunk, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	var b strings.Builder
	for i, ch := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] (source=%s, page=%s, section=%s)\n%s",
			i+1, ch.Source, ch.Page, ch.Section, ch.Text)
	}
	return truncate(b.String(), maxChars)
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
