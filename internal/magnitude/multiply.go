package magnitude

import (
	"github.com/agbru/magcalc/internal/words"
)

// Multiply returns x * y. Operands shorter than the Karatsuba threshold are
// multiplied with the schoolbook method; otherwise Karatsuba is used. Both
// paths produce identical results.
func (c *Calculator) Multiply(x, y Magnitude) (Magnitude, error) {
	if x.IsZero() || y.IsZero() {
		return Zero, nil
	}
	if len(x.w) < c.karatsubaThreshold || len(y.w) < c.karatsubaThreshold {
		return c.MultiplyBasic(x, y)
	}
	return c.MultiplyKaratsuba(x, y)
}

// MultiplyBasic returns x * y using the schoolbook kernel. The result
// buffer is sized from the bit lengths of the operands.
func (c *Calculator) MultiplyBasic(x, y Magnitude) (Magnitude, error) {
	if x.IsZero() || y.IsZero() {
		return Zero, nil
	}
	a := newArena(c.alloc)
	defer a.Release()

	ret, err := a.Alloc((x.BitLen() + y.BitLen() + words.Size - 1) / words.Size)
	if err != nil {
		return Zero, err
	}
	words.MulBasic(ret, x.w, y.w)
	return a.strip(ret)
}

// MultiplyKaratsuba returns x * y by splitting both operands at
// half = ceil(max(len x, len y) / 2) words:
//
//	p1 = xh*yh, p2 = xl*yl, p3 = (xh+xl)*(yh+yl)
//	x*y = ((p1 << 32*half) + (p3 - p1 - p2)) << 32*half + p2
//
// The three sub-products go back through Multiply, so recursion stops once
// the halves fall below the threshold. Operands too short to split are
// multiplied with the schoolbook method.
func (c *Calculator) MultiplyKaratsuba(x, y Magnitude) (Magnitude, error) {
	if x.IsZero() || y.IsZero() {
		return Zero, nil
	}
	n := max(len(x.w), len(y.w))
	if n < MinKaratsubaThreshold {
		return c.MultiplyBasic(x, y)
	}
	half := (n + 1) / 2
	shift := uint(words.Size * half)

	a := newArena(c.alloc)
	defer a.Release()

	xl, xh := x.split(half)
	yl, yh := y.split(half)

	p1, err := a.hold(c.Multiply(xh, yh))
	if err != nil {
		return Zero, err
	}
	p2, err := a.hold(c.Multiply(xl, yl))
	if err != nil {
		return Zero, err
	}
	xs, err := a.hold(c.Add(xh, xl))
	if err != nil {
		return Zero, err
	}
	ys, err := a.hold(c.Add(yh, yl))
	if err != nil {
		return Zero, err
	}
	p3, err := a.hold(c.Multiply(xs, ys))
	if err != nil {
		return Zero, err
	}
	a.drop(xs)
	a.drop(ys)

	// mid = p3 - p1 - p2
	t, err := a.hold(c.Subtract(p3, p1))
	if err != nil {
		return Zero, err
	}
	a.drop(p3)
	mid, err := a.hold(c.Subtract(t, p2))
	if err != nil {
		return Zero, err
	}
	a.drop(t)

	// ((p1 << shift) + mid) << shift + p2
	hi, err := a.hold(c.ShiftLeft(p1, shift))
	if err != nil {
		return Zero, err
	}
	a.drop(p1)
	sum, err := a.hold(c.Add(hi, mid))
	if err != nil {
		return Zero, err
	}
	a.drop(hi)
	a.drop(mid)
	hi, err = a.hold(c.ShiftLeft(sum, shift))
	if err != nil {
		return Zero, err
	}
	a.drop(sum)
	result, err := a.hold(c.Add(hi, p2))
	if err != nil {
		return Zero, err
	}
	return a.keep(result), nil
}
