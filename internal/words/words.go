package words

import "math/bits"

// Word is a single 32-bit digit of a magnitude.
type Word = uint32

const (
	// Size is the number of bits in a Word.
	Size = 32
	// base is 2^32, the radix of a word buffer.
	base = uint64(1) << Size
	mask = base - 1
)

// low returns the i-th least significant word of x (i starts at 1), or 0 when
// x is shorter than i words.
func low(x []Word, i int) Word {
	if i <= 0 || i > len(x) {
		return 0
	}
	return x[len(x)-i]
}

// BitLen returns the number of bits needed to represent w. BitLen(0) is 0.
func BitLen(w Word) int {
	return bits.Len32(w)
}

// BitLenVec returns the bit length of the value held in x, ignoring leading
// zero words.
func BitLenVec(x []Word) int {
	for i, w := range x {
		if w != 0 {
			return (len(x)-i-1)*Size + BitLen(w)
		}
	}
	return 0
}

// IsPowerOfTwo reports whether w has exactly one bit set.
func IsPowerOfTwo(w Word) bool {
	return w != 0 && w&(w-1) == 0
}

// ExponentOfTwo returns the index of the lowest set bit of w. For a power of
// two this is its base-2 exponent. ExponentOfTwo(0) is 32.
func ExponentOfTwo(w Word) uint {
	return uint(bits.TrailingZeros32(w))
}

// LeadingZeroWords returns the number of leading zero words in x.
func LeadingZeroWords(x []Word) int {
	for i, w := range x {
		if w != 0 {
			return i
		}
	}
	return len(x)
}

// Compare returns -1, 0 or +1 depending on whether x is less than, equal to
// or greater than y. The operands may differ in length; the shorter one is
// treated as left-padded with zeros.
func Compare(x, y []Word) int {
	n := max(len(x), len(y))
	for i := n; i > 0; i-- {
		a, b := low(x, i), low(y, i)
		if a != b {
			if a > b {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Add stores x + y in ret and returns the carry out of the most significant
// word of ret (0 or 1). ret must be at least as long as the longer operand;
// extra high words of ret receive the carry chain and then zeros.
// ret may be the same slice as x or y.
func Add(ret, x, y []Word) Word {
	var carry uint64
	for i := 1; i <= len(ret); i++ {
		sum := uint64(low(x, i)) + uint64(low(y, i)) + carry
		ret[len(ret)-i] = Word(sum)
		carry = sum >> Size
	}
	return Word(carry)
}

// Sub stores big - little in ret. The caller guarantees big >= little; the
// kernel does not check. Unused high words of ret are zero-filled.
// ret may be the same slice as big or little.
func Sub(ret, big, little []Word) {
	var borrow uint64
	for i := 1; i <= len(ret); i++ {
		diff := uint64(low(big, i)) - uint64(low(little, i)) - borrow
		ret[len(ret)-i] = Word(diff)
		borrow = (diff >> Size) & 1
	}
}

// ShiftLeft stores val << shift in ret, truncated to the length of ret.
// Vacated low words are zero-filled, as are high words of ret not reached by
// val. ret may be the same slice as val.
func ShiftLeft(ret, val []Word, shift uint) {
	nWords := int(shift / Size)
	nBits := shift % Size
	for i := len(ret); i >= 1; i-- {
		w := low(val, i-nWords) << nBits
		if nBits != 0 {
			w |= low(val, i-nWords-1) >> (Size - nBits)
		}
		ret[len(ret)-i] = w
	}
}

// ShiftRight stores val >> shift in ret, truncated to the length of ret. Bits
// shifted out of the low end are discarded. ret may be the same slice as val.
func ShiftRight(ret, val []Word, shift uint) {
	nWords := int(shift / Size)
	nBits := shift % Size
	for i := 1; i <= len(ret); i++ {
		w := low(val, i+nWords) >> nBits
		if nBits != 0 {
			w |= low(val, i+nWords+1) << (Size - nBits)
		}
		ret[len(ret)-i] = w
	}
}

// MulBasic stores x * y in ret using the schoolbook method. ret must be large
// enough to hold the product; it need not be len(x)+len(y) words long when
// the bit lengths of the operands allow a shorter result. When either operand
// is a single word equal to a power of two, the product is computed as a
// shift of the other operand. ret must not overlap x or y.
func MulBasic(ret, x, y []Word) {
	if len(x) == 1 && IsPowerOfTwo(x[0]) {
		ShiftLeft(ret, y, ExponentOfTwo(x[0]))
		return
	}
	if len(y) == 1 && IsPowerOfTwo(y[0]) {
		ShiftLeft(ret, x, ExponentOfTwo(y[0]))
		return
	}
	clear(ret)
	for j := 1; j <= len(y); j++ {
		yj := uint64(low(y, j))
		if yj == 0 {
			continue
		}
		var carry uint64
		for i := 1; i <= len(x); i++ {
			k := len(ret) - (i + j - 1)
			if k < 0 {
				break
			}
			t := uint64(low(x, i))*yj + uint64(ret[k]) + carry
			ret[k] = Word(t)
			carry = t >> Size
		}
		if k := len(ret) - (len(x) + j); k >= 0 {
			ret[k] = Word(carry)
		}
	}
}

// DivWord stores x / d in ret and returns x mod d. ret must be as long as x
// or, when the quotient has fewer words, at least long enough to hold it.
// Dividends of at most two words are divided as a single 64-bit value;
// longer dividends are processed one word at a time with the running
// remainder carried into the next step. d must be non-zero.
func DivWord(ret, x []Word, d Word) Word {
	if len(x) <= 2 {
		v := uint64(low(x, 2))<<Size | uint64(low(x, 1))
		q := v / uint64(d)
		for i := 1; i <= len(ret); i++ {
			ret[len(ret)-i] = Word(q)
			q >>= Size
		}
		return Word(v % uint64(d))
	}
	var rem uint64
	dd := uint64(d)
	skip := len(x) - len(ret)
	for i, w := range x {
		cur := rem<<Size | uint64(w)
		if i >= skip {
			ret[i-skip] = Word(cur / dd)
		}
		rem = cur % dd
	}
	return Word(rem)
}

// DivKnuth runs the digit loop of Knuth's Algorithm D.
//
// v is the normalized divisor: at least two words with the top bit of v[0]
// set. u is the normalized dividend extended by one leading word, so that
// len(u) == len(q) + len(v). On return q holds the quotient and the last
// len(v) words of u hold the normalized remainder; the leading words of u are
// zero.
func DivKnuth(q, u, v []Word) {
	n := len(v)
	v0, v1 := uint64(v[0]), uint64(v[1])
	for j := 0; j < len(q); j++ {
		num := uint64(u[j])<<Size | uint64(u[j+1])
		qhat := num / v0
		rhat := num % v0
		for qhat >= base || qhat*v1 > (rhat<<Size|uint64(u[j+2])) {
			qhat--
			rhat += v0
			if rhat >= base {
				break
			}
		}

		// u[j:j+n+1] -= qhat * v
		var carry, borrow uint64
		for i := n - 1; i >= 0; i-- {
			p := qhat*uint64(v[i]) + carry
			carry = p >> Size
			t := uint64(u[j+1+i]) - (p & mask) - borrow
			u[j+1+i] = Word(t)
			borrow = (t >> Size) & 1
		}
		t := uint64(u[j]) - carry - borrow
		u[j] = Word(t)

		if t>>Size != 0 {
			// The trial digit was one too large: add v back.
			qhat--
			var c uint64
			for i := n - 1; i >= 0; i-- {
				s := uint64(u[j+1+i]) + uint64(v[i]) + c
				u[j+1+i] = Word(s)
				c = s >> Size
			}
			u[j] += Word(c)
		}
		q[j] = Word(qhat)
	}
}
