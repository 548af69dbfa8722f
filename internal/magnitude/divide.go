package magnitude

import (
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/words"
)

var errDivisionByZero = apperrors.ArithmeticError{Cause: apperrors.ErrDivisionByZero}

// Divide returns the quotient x / y. A zero divisor raises an
// apperrors.ArithmeticError wrapping apperrors.ErrDivisionByZero.
func (c *Calculator) Divide(x, y Magnitude) (Magnitude, error) {
	q, r, err := c.divide(x, y, false)
	if err != nil {
		return Zero, err
	}
	c.Release(r)
	return q, nil
}

// Remainder returns x mod y. When x < y the result is x itself rather than
// a copy.
func (c *Calculator) Remainder(x, y Magnitude) (Magnitude, error) {
	if y.IsZero() {
		return Zero, errDivisionByZero
	}
	if Compare(x, y) < 0 {
		return x, nil
	}
	q, r, err := c.divide(x, y, true)
	if err != nil {
		return Zero, err
	}
	c.Release(q)
	return r, nil
}

// DivideAndRemainder returns x / y and x mod y. When x < y the quotient is
// Zero and the remainder is x itself.
func (c *Calculator) DivideAndRemainder(x, y Magnitude) (q, r Magnitude, err error) {
	if y.IsZero() {
		return Zero, Zero, errDivisionByZero
	}
	if Compare(x, y) < 0 {
		return Zero, x, nil
	}
	return c.divide(x, y, true)
}

// divide dispatches on the divisor length. The remainder is only computed
// when wantRem is set.
func (c *Calculator) divide(x, y Magnitude, wantRem bool) (q, r Magnitude, err error) {
	if y.IsZero() {
		return Zero, Zero, errDivisionByZero
	}
	if Compare(x, y) < 0 {
		return Zero, Zero, nil
	}
	if len(y.w) == 1 {
		return c.divideByWord(x, y.w[0], wantRem)
	}
	return c.divideKnuth(x, y, wantRem)
}

// divideByWord divides x by the single word d.
func (c *Calculator) divideByWord(x Magnitude, d words.Word, wantRem bool) (q, r Magnitude, err error) {
	a := newArena(c.alloc)
	defer a.Release()

	qLen := len(x.w)
	if qLen > 1 && x.w[0] < d {
		qLen--
	}
	qBuf, err := a.Alloc(qLen)
	if err != nil {
		return Zero, Zero, err
	}
	rem := words.DivWord(qBuf, x.w, d)

	if wantRem && rem != 0 {
		rBuf, err := a.Alloc(1)
		if err != nil {
			return Zero, Zero, err
		}
		rBuf[0] = rem
		r = Magnitude{w: rBuf}
	}
	q, err = a.strip(qBuf)
	if err != nil {
		return Zero, Zero, err
	}
	a.keep(r)
	return q, r, nil
}

// divideKnuth divides x by a divisor of at least two words with Algorithm D:
// both operands are shifted so that the divisor's top bit is set, the
// quotient digits are produced by DivKnuth and the remainder is shifted
// back by the same amount.
func (c *Calculator) divideKnuth(x, y Magnitude, wantRem bool) (q, r Magnitude, err error) {
	a := newArena(c.alloc)
	defer a.Release()

	n := len(y.w)
	m := len(x.w) - n
	shift := uint(words.Size - words.BitLen(y.w[0]))

	v, err := a.Alloc(n)
	if err != nil {
		return Zero, Zero, err
	}
	words.ShiftLeft(v, y.w, shift)

	u, err := a.Alloc(len(x.w) + 1)
	if err != nil {
		return Zero, Zero, err
	}
	words.ShiftLeft(u, x.w, shift)

	qBuf, err := a.Alloc(m + 1)
	if err != nil {
		return Zero, Zero, err
	}
	words.DivKnuth(qBuf, u, v)
	a.Free(v)

	if wantRem {
		rBuf, err := a.Alloc(n)
		if err != nil {
			return Zero, Zero, err
		}
		words.ShiftRight(rBuf, u[m+1:], shift)
		if r, err = a.strip(rBuf); err != nil {
			return Zero, Zero, err
		}
		// strip detached r; track it again so a failure below releases it.
		a.Track(r.w)
	}
	a.Free(u)

	if q, err = a.strip(qBuf); err != nil {
		return Zero, Zero, err
	}
	return q, a.keep(r), nil
}
