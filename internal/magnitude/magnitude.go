package magnitude

import (
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/agbru/magcalc/internal/words"
)

// Magnitude is an arbitrary-precision unsigned integer held as big-endian
// 32-bit words. It is either Zero (no buffer) or a non-empty buffer whose
// first word is non-zero; no other shape is ever produced.
//
// A Magnitude does not own its buffer in the Go sense: the Calculator that
// produced it tracks the buffer through its allocator, and Release returns
// it. Operands are never mutated.
type Magnitude struct {
	w []words.Word
}

// Zero is the magnitude of the integer 0.
var Zero Magnitude

// FromWords returns the magnitude held in w, skipping leading zero words.
// The result aliases w and is not tracked by any allocator, so it must not
// be passed to Calculator.Release.
func FromWords(w []words.Word) Magnitude {
	w = w[words.LeadingZeroWords(w):]
	if len(w) == 0 {
		return Zero
	}
	return Magnitude{w: w}
}

// FromUint64 returns a heap-backed magnitude for v.
func FromUint64(v uint64) Magnitude {
	return FromWords([]words.Word{words.Word(v >> 32), words.Word(v)})
}

// FromBig returns a heap-backed magnitude for the absolute value of b.
func FromBig(b *big.Int) Magnitude {
	raw := b.Bytes()
	if len(raw) == 0 {
		return Zero
	}
	w := make([]words.Word, (len(raw)+3)/4)
	pack(w, raw, false)
	return FromWords(w)
}

// IsZero reports whether m is the zero magnitude.
func (m Magnitude) IsZero() bool { return len(m.w) == 0 }

// Len returns the number of words in m; Len of Zero is 0.
func (m Magnitude) Len() int { return len(m.w) }

// Words returns the words of m, most significant first. The slice is shared
// with m and must not be modified. Words of Zero is nil.
func (m Magnitude) Words() []words.Word { return m.w }

// BitLen returns the number of significant bits in m.
func (m Magnitude) BitLen() int { return words.BitLenVec(m.w) }

// Equal reports whether m and o hold the same value.
func (m Magnitude) Equal(o Magnitude) bool { return slices.Equal(m.w, o.w) }

// Uint64 returns the low 64 bits of m.
func (m Magnitude) Uint64() uint64 {
	var v uint64
	for _, w := range m.w[max(0, len(m.w)-2):] {
		v = v<<32 | uint64(w)
	}
	return v
}

// Big converts m to a *big.Int.
func (m Magnitude) Big() *big.Int {
	raw := make([]byte, 4*len(m.w))
	for i, w := range m.w {
		raw[4*i] = byte(w >> 24)
		raw[4*i+1] = byte(w >> 16)
		raw[4*i+2] = byte(w >> 8)
		raw[4*i+3] = byte(w)
	}
	return new(big.Int).SetBytes(raw)
}

// String renders m in hexadecimal with a 0x prefix.
func (m Magnitude) String() string {
	if m.IsZero() {
		return "0x0"
	}
	var sb strings.Builder
	sb.Grow(2 + 8*len(m.w))
	fmt.Fprintf(&sb, "0x%x", m.w[0])
	for _, w := range m.w[1:] {
		fmt.Fprintf(&sb, "%08x", w)
	}
	return sb.String()
}

// split returns the low half words and the remaining high words of m. The
// halves are views into m; the low half drops its leading zero words.
func (m Magnitude) split(half int) (lo, hi Magnitude) {
	if len(m.w) <= half {
		return m, Zero
	}
	cut := len(m.w) - half
	return FromWords(m.w[cut:]), Magnitude{w: m.w[:cut]}
}

// pack stores the big-endian bytes raw into dst, right-aligned, inverting
// every byte when invert is set. dst must be zeroed and large enough.
func pack(dst []words.Word, raw []byte, invert bool) {
	n := len(dst)
	for k, i := 0, len(raw)-1; i >= 0; k, i = k+1, i-1 {
		b := raw[i]
		if invert {
			b = ^b
		}
		dst[n-1-k/4] |= words.Word(b) << (8 * (k % 4))
	}
}
