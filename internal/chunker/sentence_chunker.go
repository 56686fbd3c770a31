package chunker

import (
	"regexp"
	"strings"

	"github.com/msami123/Web-chat-bot/internal/domain"
	"github.com/msami123/Web-chat-bot/internal/langdetect"
)

// SentenceChunker splits text into sentence-based chunks with overlap.
// Sentences end with Latin or Arabic terminal punctuation; a trailing
// fragment without punctuation is kept as its own sentence.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`[^.!?؟]+(?:[.!?؟]+|\z)`),
	}
}

// Chunk splits document into chunks that inherit its source and page. The
// section is the 1-based chunk ordinal within the document and the language
// is detected from the chunk text.
func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	var sentences []string
	for _, s := range c.splitter.FindAllString(document.Content, -1) {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return nil, nil
	}
	var chunks []domain.Chunk
	i := 0
	idx := 0
	for i < len(sentences) {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		text := strings.Join(sentences[i:end], " ")
		chunks = append(chunks, domain.Chunk{
			Text:    text,
			Source:  document.Source,
			Page:    document.Page,
			Section: domain.IntLocator(idx + 1),
			Lang:    langdetect.Detect(text),
		})
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
		idx++
	}
	return chunks, nil
}
