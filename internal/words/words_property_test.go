package words

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genBuffer generates word buffers of up to 12 words, biased towards the
// all-ones and all-zeros words that exercise carry and borrow chains.
func genBuffer() gopter.Gen {
	word := gen.UInt32().Map(func(v uint32) Word {
		switch v % 4 {
		case 0:
			return 0
		case 1:
			return 0xFFFFFFFF
		default:
			return v
		}
	})
	return gen.IntRange(0, 12).FlatMap(func(n any) gopter.Gen {
		return gen.SliceOfN(n.(int), word)
	}, reflect.TypeOf([]Word(nil)))
}

func TestKernels_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Add matches big.Int addition", prop.ForAll(
		func(x, y []Word) bool {
			ret := make([]Word, max(len(x), len(y))+1)
			if Add(ret, x, y) != 0 {
				return false
			}
			return toBig(ret).Cmp(new(big.Int).Add(toBig(x), toBig(y))) == 0
		},
		genBuffer(), genBuffer(),
	))

	properties.Property("Sub inverts Add", prop.ForAll(
		func(x, y []Word) bool {
			sum := make([]Word, max(len(x), len(y))+1)
			Add(sum, x, y)
			diff := make([]Word, len(sum))
			Sub(diff, sum, y)
			return Compare(diff, x) == 0
		},
		genBuffer(), genBuffer(),
	))

	properties.Property("ShiftRight inverts ShiftLeft", prop.ForAll(
		func(x []Word, shift uint) bool {
			shift %= 200
			shifted := make([]Word, len(x)+int(shift/Size)+1)
			ShiftLeft(shifted, x, shift)
			back := make([]Word, len(x))
			ShiftRight(back, shifted, shift)
			return Compare(back, x) == 0
		},
		genBuffer(), gen.UInt(),
	))

	properties.Property("ShiftLeft matches big.Int Lsh", prop.ForAll(
		func(x []Word, shift uint) bool {
			shift %= 200
			ret := make([]Word, len(x)+int(shift/Size)+1)
			ShiftLeft(ret, x, shift)
			return toBig(ret).Cmp(new(big.Int).Lsh(toBig(x), shift)) == 0
		},
		genBuffer(), gen.UInt(),
	))

	properties.Property("MulBasic matches big.Int multiplication", prop.ForAll(
		func(x, y []Word) bool {
			ret := make([]Word, len(x)+len(y))
			MulBasic(ret, x, y)
			return toBig(ret).Cmp(new(big.Int).Mul(toBig(x), toBig(y))) == 0
		},
		genBuffer(), genBuffer(),
	))

	properties.Property("DivWord satisfies q*d + r = x", prop.ForAll(
		func(x []Word, d Word) bool {
			if d == 0 {
				d = 1
			}
			q := make([]Word, len(x))
			r := DivWord(q, x, d)
			if r >= d {
				return false
			}
			back := new(big.Int).Mul(toBig(q), new(big.Int).SetUint64(uint64(d)))
			back.Add(back, new(big.Int).SetUint64(uint64(r)))
			return back.Cmp(toBig(x)) == 0
		},
		genBuffer(), gen.UInt32(),
	))

	properties.Property("DivKnuth matches big.Int QuoRem", prop.ForAll(
		func(x, y []Word) bool {
			y = y[LeadingZeroWords(y):]
			if len(y) < 2 {
				y = append([]Word{1}, append(y, 1)...)
			}
			x = x[LeadingZeroWords(x):]
			if len(x) < len(y) {
				x, y = y, x
				if len(y) < 2 {
					return true
				}
			}
			q, r := knuth(x, y)
			wantQ, wantR := new(big.Int).QuoRem(toBig(x), toBig(y), new(big.Int))
			return q.Cmp(wantQ) == 0 && r.Cmp(wantR) == 0
		},
		genBuffer(), genBuffer(),
	))

	properties.TestingRun(t)
}

// FuzzMulBasic cross-checks the schoolbook kernel against math/big.
func FuzzMulBasic(f *testing.F) {
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF}, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x01})
	f.Add([]byte{0x80}, []byte{0x01, 0x02, 0x03})
	f.Fuzz(func(t *testing.T, a, b []byte) {
		x, y := bytesToWords(a), bytesToWords(b)
		ret := make([]Word, len(x)+len(y))
		MulBasic(ret, x, y)
		want := new(big.Int).Mul(toBig(x), toBig(y))
		if toBig(ret).Cmp(want) != 0 {
			t.Fatalf("MulBasic(%v, %v) = %v, want %s", x, y, ret, want)
		}
	})
}

// FuzzDivKnuth cross-checks Algorithm D against math/big.
func FuzzDivKnuth(f *testing.F) {
	f.Add([]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0, 0x11, 0x22, 0x33, 0x44}, []byte{0x01, 0, 0, 0, 0xFF})
	f.Fuzz(func(t *testing.T, a, b []byte) {
		x, y := bytesToWords(a), bytesToWords(b)
		x = x[LeadingZeroWords(x):]
		y = y[LeadingZeroWords(y):]
		if len(y) < 2 || len(x) < len(y) {
			t.Skip()
		}
		q, r := knuth(x, y)
		wantQ, wantR := new(big.Int).QuoRem(toBig(x), toBig(y), new(big.Int))
		if q.Cmp(wantQ) != 0 || r.Cmp(wantR) != 0 {
			t.Fatalf("DivKnuth(%v, %v) = %s rem %s, want %s rem %s", x, y, q, r, wantQ, wantR)
		}
	})
}

// bytesToWords packs big-endian bytes into words, padding the front.
func bytesToWords(b []byte) []Word {
	if len(b) > 64 {
		b = b[:64]
	}
	n := (len(b) + 3) / 4
	out := make([]Word, n)
	for i := len(b) - 1; i >= 0; i-- {
		k := len(b) - 1 - i
		out[n-1-k/4] |= Word(b[i]) << (8 * (k % 4))
	}
	return out
}
