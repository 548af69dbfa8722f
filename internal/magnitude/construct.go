package magnitude

import (
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/words"
)

const nullArrayMessage = "Cannot load from null array object"

// checkRange validates the byte range [off, off+n) of buf.
func checkRange(buf []byte, off, n int) error {
	if buf == nil {
		return apperrors.NullPointerError{Message: nullArrayMessage}
	}
	size := len(buf)
	switch {
	case off < 0 || off >= size:
		return apperrors.IndexOutOfBoundsError{Index: off, Length: size}
	case n < 0:
		return apperrors.IndexOutOfBoundsError{Index: n, Length: size}
	case off+n > size:
		return apperrors.IndexOutOfBoundsError{Index: size, Length: size}
	}
	return nil
}

// FromTwosComplementBytes converts buf[off:off+n] to a magnitude.
//
// With negative unset the bytes are read as an unsigned big-endian value.
// With negative set they are read as a two's-complement negative value and
// the result is its absolute value. The range must lie within buf; a nil buf
// raises apperrors.NullPointerError and a bad range raises
// apperrors.IndexOutOfBoundsError.
func (c *Calculator) FromTwosComplementBytes(buf []byte, off, n int, negative bool) (Magnitude, error) {
	if err := checkRange(buf, off, n); err != nil {
		return Zero, err
	}
	if negative {
		return c.fromNegative(buf[off : off+n])
	}
	return c.fromPositive(buf[off : off+n])
}

// FromBytes converts buf[off:off+n] to a magnitude, taking the sign from the
// top bit of the first byte.
func (c *Calculator) FromBytes(buf []byte, off, n int) (Magnitude, error) {
	if err := checkRange(buf, off, n); err != nil {
		return Zero, err
	}
	return c.FromTwosComplementBytes(buf, off, n, buf[off]&0x80 != 0)
}

// FromSignedBytes converts buf[off:off+n] to a magnitude with an explicit
// sign. A zero signum or a nil buf yields Zero without checking the range; a
// negative signum selects the two's-complement negative reading.
func (c *Calculator) FromSignedBytes(signum int32, buf []byte, off, n int) (Magnitude, error) {
	if signum == 0 || buf == nil {
		return Zero, nil
	}
	return c.FromTwosComplementBytes(buf, off, n, signum < 0)
}

// FromInt64 returns the magnitude of |v| in one or two words.
func (c *Calculator) FromInt64(v int64) (Magnitude, error) {
	u := uint64(v)
	if v < 0 {
		u = -u
	}
	if u == 0 {
		return Zero, nil
	}
	n := 1
	if u>>32 != 0 {
		n = 2
	}
	buf, err := c.alloc.Allocate(n)
	if err != nil {
		return Zero, err
	}
	buf[n-1] = words.Word(u)
	if n == 2 {
		buf[0] = words.Word(u >> 32)
	}
	return Magnitude{w: buf}, nil
}

func (c *Calculator) fromPositive(raw []byte) (Magnitude, error) {
	i := 0
	for i < len(raw) && raw[i] == 0 {
		i++
	}
	raw = raw[i:]
	if len(raw) == 0 {
		return Zero, nil
	}
	buf, err := c.alloc.Allocate((len(raw) + 3) / 4)
	if err != nil {
		return Zero, err
	}
	c.alloc.Clear(buf)
	pack(buf, raw, false)
	return Magnitude{w: buf}, nil
}

func (c *Calculator) fromNegative(raw []byte) (Magnitude, error) {
	i := 0
	for i < len(raw) && raw[i] == 0xFF {
		i++
	}
	raw = raw[i:]
	if len(raw) == 0 {
		// All-ones is -1 at any width: the magnitude is 1.
		buf, err := c.alloc.Allocate(1)
		if err != nil {
			return Zero, err
		}
		buf[0] = 1
		return Magnitude{w: buf}, nil
	}

	// When every remaining byte is zero, adding one after inversion carries
	// into a byte above them.
	extra := 1
	for _, b := range raw {
		if b != 0 {
			extra = 0
			break
		}
	}
	buf, err := c.alloc.Allocate((len(raw) + 3 + extra) / 4)
	if err != nil {
		return Zero, err
	}
	c.alloc.Clear(buf)
	pack(buf, raw, true)
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i]++
		if buf[i] != 0 {
			break
		}
	}
	return Magnitude{w: buf}, nil
}
