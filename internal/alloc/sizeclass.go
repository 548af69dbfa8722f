// This file defines the word buffer size classes used by Pool.

package alloc

import (
	"math/bits"

	"github.com/agbru/magcalc/internal/words"
)

// ─────────────────────────────────────────────────────────────────────────────
// Size Classes
// ─────────────────────────────────────────────────────────────────────────────

// Buffers are rounded up to a power-of-two capacity between minClassWords
// and maxClassWords so that a freed buffer can be reused for any later
// request of the same class. Larger requests are allocated exactly and are
// never cached.
const (
	minClassWords = 4
	maxClassWords = 1 << 20
	numClasses    = 19 // 4, 8, 16, ..., 1M words
)

// classIndex returns the size class for a request of n words, or -1 when n
// exceeds the largest class.
//
// Class i holds buffers of 4<<i words, so bits.Len(n-1) maps directly to
// i+2 for any n above the smallest class.
func classIndex(n int) int {
	if n <= minClassWords {
		return 0
	}
	if n > maxClassWords {
		return -1
	}
	return bits.Len(uint(n-1)) - 2
}

// classSize returns the capacity of buffers in class idx.
func classSize(idx int) int {
	return minClassWords << idx
}

// capacityFor returns the capacity that will back a request of n words.
func capacityFor(n int) int {
	if idx := classIndex(n); idx >= 0 {
		return classSize(idx)
	}
	return n
}

// exactClass returns the class whose size equals c, or -1 when a buffer of
// capacity c did not come from a class.
func exactClass(c int) int {
	idx := classIndex(c)
	if idx < 0 || classSize(idx) != c {
		return -1
	}
	return idx
}

// freeList is a LIFO stack of cached buffers of a single class.
type freeList [][]words.Word

func (l *freeList) push(buf []words.Word) {
	*l = append(*l, buf)
}

func (l *freeList) pop() ([]words.Word, bool) {
	n := len(*l)
	if n == 0 {
		return nil, false
	}
	buf := (*l)[n-1]
	(*l)[n-1] = nil
	*l = (*l)[:n-1]
	return buf, true
}
