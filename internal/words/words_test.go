package words

import (
	"math/big"
	"slices"
	"testing"
)

// toBig converts a big-endian word buffer to a *big.Int.
func toBig(x []Word) *big.Int {
	r := new(big.Int)
	for _, w := range x {
		r.Lsh(r, Size)
		r.Or(r, new(big.Int).SetUint64(uint64(w)))
	}
	return r
}

// fromBig converts b to a big-endian buffer of exactly n words, truncating
// high words that do not fit.
func fromBig(b *big.Int, n int) []Word {
	out := make([]Word, n)
	t := new(big.Int).Set(b)
	m := new(big.Int).SetUint64(mask)
	for i := n - 1; i >= 0; i-- {
		out[i] = Word(new(big.Int).And(t, m).Uint64())
		t.Rsh(t, Size)
	}
	return out
}

func TestCompare(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		x, y []Word
		want int
	}{
		{"both empty", nil, nil, 0},
		{"equal single", []Word{7}, []Word{7}, 0},
		{"leading zero padding", []Word{0, 0, 7}, []Word{7}, 0},
		{"greater high word", []Word{2, 0}, []Word{1, 0xFFFFFFFF}, 1},
		{"less low word", []Word{1, 1}, []Word{1, 2}, -1},
		{"shorter but larger", []Word{0xFFFFFFFF}, []Word{0, 3}, 1},
		{"empty vs non-zero", nil, []Word{1}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Compare(tt.x, tt.y); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
			if got := Compare(tt.y, tt.x); got != -tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.y, tt.x, got, -tt.want)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		retLen    int
		x, y      []Word
		want      []Word
		wantCarry Word
	}{
		{"simple", 1, []Word{1}, []Word{2}, []Word{3}, 0},
		{"carry out", 1, []Word{0xFFFFFFFF}, []Word{1}, []Word{0}, 1},
		{"carry chain through tail", 3, []Word{0xFFFFFFFF, 0xFFFFFFFF}, []Word{1}, []Word{1, 0, 0}, 0},
		{"carry chain overflows", 2, []Word{0xFFFFFFFF, 0xFFFFFFFF}, []Word{1}, []Word{0, 0}, 1},
		{"different lengths", 3, []Word{1}, []Word{5, 6, 7}, []Word{5, 6, 8}, 0},
		{"empty operand", 2, nil, []Word{9, 9}, []Word{9, 9}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ret := make([]Word, tt.retLen)
			carry := Add(ret, tt.x, tt.y)
			if !slices.Equal(ret, tt.want) || carry != tt.wantCarry {
				t.Errorf("Add = %v carry %d, want %v carry %d", ret, carry, tt.want, tt.wantCarry)
			}
		})
	}
}

func TestAddInPlace(t *testing.T) {
	t.Parallel()
	x := []Word{1, 0xFFFFFFFF}
	Add(x, x, []Word{1})
	if !slices.Equal(x, []Word{2, 0}) {
		t.Errorf("in-place Add = %v, want [2 0]", x)
	}
}

func TestSub(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		retLen      int
		big, little []Word
		want        []Word
	}{
		{"simple", 1, []Word{5}, []Word{3}, []Word{2}},
		{"borrow", 2, []Word{1, 0}, []Word{1}, []Word{0, 0xFFFFFFFF}},
		{"borrow chain", 3, []Word{1, 0, 0}, []Word{1}, []Word{0, 0xFFFFFFFF, 0xFFFFFFFF}},
		{"equal operands", 2, []Word{4, 4}, []Word{4, 4}, []Word{0, 0}},
		{"zero-fill high words", 3, []Word{9}, []Word{4}, []Word{0, 0, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ret := make([]Word, tt.retLen)
			for i := range ret {
				ret[i] = 0xDEADBEEF
			}
			Sub(ret, tt.big, tt.little)
			if !slices.Equal(ret, tt.want) {
				t.Errorf("Sub = %v, want %v", ret, tt.want)
			}
		})
	}
}

func TestShiftLeft(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		retLen int
		val    []Word
		shift  uint
		want   []Word
	}{
		{"no shift", 1, []Word{5}, 0, []Word{5}},
		{"bit shift", 1, []Word{1}, 4, []Word{16}},
		{"bit shift spills", 2, []Word{0x80000001}, 1, []Word{1, 2}},
		{"word shift", 3, []Word{7}, 64, []Word{7, 0, 0}},
		{"word and bit shift", 3, []Word{0xF0000000}, 36, []Word{0xF, 0, 0}},
		{"truncated", 1, []Word{0x80000001}, 1, []Word{2}},
		{"zero-filled high words", 3, []Word{1}, 1, []Word{0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ret := make([]Word, tt.retLen)
			ShiftLeft(ret, tt.val, tt.shift)
			if !slices.Equal(ret, tt.want) {
				t.Errorf("ShiftLeft(%v, %d) = %v, want %v", tt.val, tt.shift, ret, tt.want)
			}
		})
	}
}

func TestShiftRight(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		retLen int
		val    []Word
		shift  uint
		want   []Word
	}{
		{"no shift", 1, []Word{5}, 0, []Word{5}},
		{"bit shift", 1, []Word{16}, 4, []Word{1}},
		{"bit shift across words", 2, []Word{1, 2}, 1, []Word{0, 0x80000001}},
		{"word shift", 1, []Word{7, 0, 0}, 64, []Word{7}},
		{"discards low bits", 1, []Word{0xFF}, 4, []Word{0xF}},
		{"word and bit shift", 1, []Word{0xF, 0, 0}, 36, []Word{0xF0000000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ret := make([]Word, tt.retLen)
			ShiftRight(ret, tt.val, tt.shift)
			if !slices.Equal(ret, tt.want) {
				t.Errorf("ShiftRight(%v, %d) = %v, want %v", tt.val, tt.shift, ret, tt.want)
			}
		})
	}
}

func TestShiftInPlace(t *testing.T) {
	t.Parallel()
	x := []Word{0, 0x80000001, 0x80000000}
	ShiftLeft(x, x, 1)
	if !slices.Equal(x, []Word{1, 3, 0}) {
		t.Fatalf("in-place ShiftLeft = %v, want [1 3 0]", x)
	}
	ShiftRight(x, x, 1)
	if !slices.Equal(x, []Word{0, 0x80000001, 0x80000000}) {
		t.Errorf("in-place ShiftRight = %v", x)
	}
}

func TestMulBasic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		retLen int
		x, y   []Word
		want   []Word
	}{
		{"single words", 2, []Word{0xFFFFFFFF}, []Word{0xFFFFFFFF}, []Word{0xFFFFFFFE, 1}},
		{"power of two left", 2, []Word{8}, []Word{0x30000000}, []Word{1, 0x80000000}},
		{"power of two right", 3, []Word{1, 1}, []Word{0x80000000}, []Word{0, 0x80000000, 0x80000000}},
		{"one", 2, []Word{1}, []Word{3, 4}, []Word{3, 4}},
		{"multi word", 4, []Word{1, 0}, []Word{1, 0}, []Word{0, 1, 0, 0}},
		{"tight result", 3, []Word{1, 0}, []Word{1, 0}, []Word{1, 0, 0}},
		{"zero word in multiplier", 4, []Word{3, 3}, []Word{2, 0}, []Word{0, 6, 6, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ret := make([]Word, tt.retLen)
			MulBasic(ret, tt.x, tt.y)
			if !slices.Equal(ret, tt.want) {
				t.Errorf("MulBasic(%v, %v) = %v, want %v", tt.x, tt.y, ret, tt.want)
			}
		})
	}
}

func TestDivWord(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		retLen  int
		x       []Word
		d       Word
		want    []Word
		wantRem Word
	}{
		{"single word", 1, []Word{100}, 7, []Word{14}, 2},
		{"two words fast path", 2, []Word{1, 0}, 2, []Word{0, 0x80000000}, 0},
		{"two words into one", 1, []Word{1, 0}, 3, []Word{0x55555555}, 1},
		{"long dividend", 3, []Word{5, 0, 1}, 5, []Word{1, 0, 0}, 1},
		{"long dividend short quotient", 2, []Word{1, 2, 3}, 4, []Word{0x40000000, 0x80000000}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ret := make([]Word, tt.retLen)
			rem := DivWord(ret, tt.x, tt.d)
			if !slices.Equal(ret, tt.want) || rem != tt.wantRem {
				t.Errorf("DivWord(%v, %d) = %v rem %d, want %v rem %d", tt.x, tt.d, ret, rem, tt.want, tt.wantRem)
			}
		})
	}
}

// knuth divides x by y (len(y) >= 2) through DivKnuth and returns the
// quotient and remainder as big.Ints.
func knuth(x, y []Word) (*big.Int, *big.Int) {
	shift := uint(Size - BitLen(y[0]))
	v := make([]Word, len(y))
	ShiftLeft(v, y, shift)
	u := make([]Word, len(x)+1)
	ShiftLeft(u, x, shift)
	q := make([]Word, len(x)-len(y)+1)
	DivKnuth(q, u, v)
	r := make([]Word, len(y))
	ShiftRight(r, u[len(u)-len(y):], shift)
	for _, w := range u[:len(u)-len(y)] {
		if w != 0 {
			panic("leading dividend words not cleared")
		}
	}
	return toBig(q), toBig(r)
}

func TestDivKnuth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		x, y []Word
	}{
		{"exact", []Word{0, 1, 0, 0}, []Word{1, 0}},
		{"normalized divisor", []Word{0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF}, []Word{0x80000000, 1}},
		{"needs add back", []Word{0x80000000, 0, 0, 0}, []Word{0x80000000, 0, 1}},
		{"qhat correction", []Word{0x7FFFFFFF, 0x80000000, 0, 0}, []Word{0x80000000, 0xFFFFFFFF}},
		{"equal operands", []Word{3, 4, 5}, []Word{3, 4, 5}},
		{"small shift", []Word{0x12345678, 0x9ABCDEF0, 0x0FEDCBA9, 0x87654321}, []Word{0x40000000, 0x11111111}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, r := knuth(tt.x, tt.y)
			wantQ, wantR := new(big.Int).QuoRem(toBig(tt.x), toBig(tt.y), new(big.Int))
			if q.Cmp(wantQ) != 0 || r.Cmp(wantR) != 0 {
				t.Errorf("DivKnuth(%v, %v) = %s rem %s, want %s rem %s", tt.x, tt.y, q, r, wantQ, wantR)
			}
		})
	}
}

func TestBitHelpers(t *testing.T) {
	t.Parallel()
	if got := BitLenVec([]Word{0, 0, 1, 0}); got != 33 {
		t.Errorf("BitLenVec = %d, want 33", got)
	}
	if got := BitLenVec([]Word{0, 0}); got != 0 {
		t.Errorf("BitLenVec(zero) = %d, want 0", got)
	}
	if !IsPowerOfTwo(0x80000000) || IsPowerOfTwo(0) || IsPowerOfTwo(6) {
		t.Error("IsPowerOfTwo misclassified a word")
	}
	if got := ExponentOfTwo(1 << 17); got != 17 {
		t.Errorf("ExponentOfTwo = %d, want 17", got)
	}
	if got := LeadingZeroWords([]Word{0, 0, 3}); got != 2 {
		t.Errorf("LeadingZeroWords = %d, want 2", got)
	}
}
