// Package langdetect classifies free text as Arabic or English.
package langdetect

import "strings"

const (
	Arabic  = "ar"
	English = "en"
)

// arabicShare is the fraction of runes that must fall in the Arabic block
// before text is classified as Arabic.
const arabicShare = 0.2

// Detect returns Arabic when more than 20% of the runes of text lie in
// U+0600..U+06FF and English otherwise.
func Detect(text string) string {
	total, arabic := 0, 0
	for _, r := range text {
		total++
		if r >= '\u0600' && r <= '\u06FF' {
			arabic++
		}
	}
	if float64(arabic) > float64(total)*arabicShare {
		return Arabic
	}
	return English
}

// Matches reports whether tag (e.g. "ar-SA", "EN") names lang by a
// case-insensitive prefix match. An empty lang never matches.
func Matches(tag, lang string) bool {
	if lang == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(tag), lang)
}
