package index

import (
	"errors"
	"sync/atomic"
)

// Holder publishes the current index to concurrent readers. Rebuilds are
// done off to the side and swapped in whole, so a reader sees either the
// old or the new index and never a partial one.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder returns a holder serving idx.
func NewHolder(idx *Index) (*Holder, error) {
	if idx == nil {
		return nil, errors.New("nil index")
	}
	h := &Holder{}
	h.current.Store(idx)
	return h, nil
}

// Load returns the index currently being served.
func (h *Holder) Load() *Index { return h.current.Load() }

// Swap replaces the served index and returns the previous one. A nil idx
// is ignored.
func (h *Holder) Swap(idx *Index) *Index {
	if idx == nil {
		return h.current.Load()
	}
	return h.current.Swap(idx)
}
