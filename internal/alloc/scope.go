package alloc

import (
	"unsafe"

	"github.com/agbru/magcalc/internal/words"
)

// Scope tracks the temporaries of a single operation so that every one of
// them is released when the operation returns, including on error paths:
//
//	sc := alloc.NewScope(a)
//	defer sc.Release()
//	tmp, err := sc.Alloc(n)
//	...
//	return sc.Keep(result), nil
//
// A Scope is not safe for concurrent use.
type Scope struct {
	alloc Allocator
	bufs  [][]words.Word
}

// NewScope creates an empty scope over a.
func NewScope(a Allocator) *Scope {
	return &Scope{alloc: a}
}

// Alloc allocates n words and tracks the buffer.
func (s *Scope) Alloc(n int) ([]words.Word, error) {
	buf, err := s.alloc.Allocate(n)
	if err != nil {
		return nil, err
	}
	s.Track(buf)
	return buf, nil
}

// Track adds a buffer allocated elsewhere to the scope.
func (s *Scope) Track(buf []words.Word) {
	if cap(buf) == 0 {
		return
	}
	s.bufs = append(s.bufs, buf)
}

// Keep removes buf from the scope so that Release leaves it alive, and
// returns it.
func (s *Scope) Keep(buf []words.Word) []words.Word {
	s.untrack(buf)
	return buf
}

// Free releases buf now. It is a no-op for buffers the scope does not track,
// so borrowed operands can be passed safely.
func (s *Scope) Free(buf []words.Word) {
	if s.untrack(buf) {
		s.alloc.Free(buf)
	}
}

// Release frees every buffer still tracked.
func (s *Scope) Release() {
	for i, buf := range s.bufs {
		s.alloc.Free(buf)
		s.bufs[i] = nil
	}
	s.bufs = s.bufs[:0]
}

// Len returns the number of tracked buffers.
func (s *Scope) Len() int { return len(s.bufs) }

func (s *Scope) untrack(buf []words.Word) bool {
	if cap(buf) == 0 {
		return false
	}
	for i := len(s.bufs) - 1; i >= 0; i-- {
		if sameBuffer(s.bufs[i], buf) {
			last := len(s.bufs) - 1
			s.bufs[i] = s.bufs[last]
			s.bufs[last] = nil
			s.bufs = s.bufs[:last]
			return true
		}
	}
	return false
}

// sameBuffer reports whether a and b start at the same backing array
// element.
func sameBuffer(a, b []words.Word) bool {
	return unsafe.SliceData(a) == unsafe.SliceData(b)
}
