package index

import (
	"errors"

	"github.com/msami123/Web-chat-bot/internal/domain"
)

var (
	// ErrEmptyCorpus is returned when an index is built over zero chunks.
	ErrEmptyCorpus = domain.ErrEmptyCorpus
	// ErrDegenerateVocabulary is returned when no term survives
	// document-frequency filtering.
	ErrDegenerateVocabulary = errors.New("no terms remain after document-frequency filtering")
)
