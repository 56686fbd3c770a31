package index

import (
	"regexp"
	"strings"
)

// tokenPattern matches runs of two or more word characters. Arabic letters
// are word characters; combining marks are not.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// analyze returns the unigrams of text followed by every n-gram up to
// ngramMax, each n-gram joined by a single space.
func analyze(text string, ngramMax int) []string {
	tokens := tokenize(text)
	if ngramMax <= 1 || len(tokens) < 2 {
		return tokens
	}
	out := make([]string, len(tokens), len(tokens)*ngramMax)
	copy(out, tokens)
	for n := 2; n <= ngramMax && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
