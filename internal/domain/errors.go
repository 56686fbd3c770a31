package domain

import "errors"

// ErrEmptyCorpus marks a knowledge base with no chunks. It is a
// configuration error: the bot must refuse to serve rather than answer
// from nothing.
var ErrEmptyCorpus = errors.New("knowledge base is empty")
