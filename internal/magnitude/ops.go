package magnitude

import (
	"github.com/agbru/magcalc/internal/words"
)

// Compare returns -1, 0 or +1 as x is less than, equal to or greater than y.
// Canonical magnitudes compare by length first. Compare never allocates.
func (c *Calculator) Compare(x, y Magnitude) int {
	return Compare(x, y)
}

// Compare is the allocation-free comparison used by Calculator.Compare.
func Compare(x, y Magnitude) int {
	switch {
	case len(x.w) > len(y.w):
		return 1
	case len(x.w) < len(y.w):
		return -1
	default:
		return words.Compare(x.w, y.w)
	}
}

// Add returns x + y.
func (c *Calculator) Add(x, y Magnitude) (Magnitude, error) {
	n := max(len(x.w), len(y.w))
	if n == 0 {
		return Zero, nil
	}
	ret, err := c.alloc.Allocate(n)
	if err != nil {
		return Zero, err
	}
	if words.Add(ret, x.w, y.w) == 0 {
		return Magnitude{w: ret}, nil
	}

	bigger, err := c.alloc.Allocate(n + 1)
	if err != nil {
		c.alloc.Free(ret)
		return Zero, err
	}
	bigger[0] = 1
	copy(bigger[1:], ret)
	c.alloc.Free(ret)
	return Magnitude{w: bigger}, nil
}

// Subtract returns big - little. The caller guarantees big >= little.
func (c *Calculator) Subtract(big, little Magnitude) (Magnitude, error) {
	n := max(len(big.w), len(little.w))
	if n == 0 {
		return Zero, nil
	}
	a := newArena(c.alloc)
	defer a.Release()

	ret, err := a.Alloc(n)
	if err != nil {
		return Zero, err
	}
	words.Sub(ret, big.w, little.w)
	return a.strip(ret)
}

// ShiftLeft returns m << n.
func (c *Calculator) ShiftLeft(m Magnitude, n uint) (Magnitude, error) {
	if m.IsZero() {
		return Zero, nil
	}
	nWords := int(n / words.Size)
	nBits := n % words.Size
	retLen := len(m.w) + nWords
	if nBits != 0 && m.w[0]>>(words.Size-nBits) != 0 {
		retLen++
	}
	ret, err := c.alloc.Allocate(retLen)
	if err != nil {
		return Zero, err
	}
	words.ShiftLeft(ret, m.w, n)
	return Magnitude{w: ret}, nil
}

// ShiftRight returns m >> n.
func (c *Calculator) ShiftRight(m Magnitude, n uint) (Magnitude, error) {
	nWords := int(n / words.Size)
	nBits := n % words.Size
	if nWords >= len(m.w) {
		return Zero, nil
	}
	retLen := len(m.w) - nWords
	if nBits != 0 && m.w[0]>>nBits == 0 {
		retLen--
	}
	if retLen == 0 {
		return Zero, nil
	}
	ret, err := c.alloc.Allocate(retLen)
	if err != nil {
		return Zero, err
	}
	words.ShiftRight(ret, m.w, n)
	return Magnitude{w: ret}, nil
}

// BitLength returns the number of significant bits of m.
func (c *Calculator) BitLength(m Magnitude) int {
	return m.BitLen()
}
