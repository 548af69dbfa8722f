package magnitude

import (
	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/words"
)

const (
	// DefaultKaratsubaThreshold is the operand length, in words, from which
	// Multiply switches from the schoolbook method to Karatsuba.
	DefaultKaratsubaThreshold = 80
	// MinKaratsubaThreshold is the smallest threshold for which every
	// Karatsuba step works on strictly shorter operands.
	MinKaratsubaThreshold = 4
)

// Calculator performs magnitude operations, drawing every buffer from its
// allocator. A Calculator is immutable and safe for concurrent use when its
// allocator is.
type Calculator struct {
	alloc              alloc.Allocator
	karatsubaThreshold int
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithKaratsubaThreshold sets the Karatsuba cutover. Values below
// MinKaratsubaThreshold are raised to it.
func WithKaratsubaThreshold(n int) Option {
	return func(c *Calculator) {
		c.karatsubaThreshold = max(n, MinKaratsubaThreshold)
	}
}

// NewCalculator creates a Calculator over a.
func NewCalculator(a alloc.Allocator, opts ...Option) *Calculator {
	c := &Calculator{alloc: a, karatsubaThreshold: DefaultKaratsubaThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// KaratsubaThreshold returns the configured cutover in words.
func (c *Calculator) KaratsubaThreshold() int { return c.karatsubaThreshold }

// Allocator returns the allocator backing c.
func (c *Calculator) Allocator() alloc.Allocator { return c.alloc }

// WithOptions returns a copy of c with opts applied.
func (c *Calculator) WithOptions(opts ...Option) *Calculator {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Release returns the buffer of m to the allocator. m must have been
// produced by this Calculator and must not be used afterwards.
func (c *Calculator) Release(m Magnitude) {
	if !m.IsZero() {
		c.alloc.Free(m.w)
	}
}

// Clone returns a freshly allocated copy of m.
func (c *Calculator) Clone(m Magnitude) (Magnitude, error) {
	if m.IsZero() {
		return Zero, nil
	}
	buf, err := c.alloc.Allocate(len(m.w))
	if err != nil {
		return Zero, err
	}
	copy(buf, m.w)
	return Magnitude{w: buf}, nil
}

// arena wraps a scope with helpers for operations that build their result
// from other operations.
type arena struct {
	*alloc.Scope
}

func newArena(a alloc.Allocator) arena {
	return arena{alloc.NewScope(a)}
}

// hold tracks the result of a nested operation as a temporary.
func (a arena) hold(m Magnitude, err error) (Magnitude, error) {
	if err != nil {
		return Zero, err
	}
	a.Track(m.w)
	return m, nil
}

// drop releases a temporary now.
func (a arena) drop(m Magnitude) {
	a.Free(m.w)
}

// keep detaches m from the arena and returns it as the caller's result.
func (a arena) keep(m Magnitude) Magnitude {
	a.Keep(m.w)
	return m
}

// strip turns buf, a temporary of this arena, into a canonical magnitude.
// Leading zero words are removed by copying into a shorter buffer; an
// all-zero buffer yields Zero. The returned magnitude is detached from the
// arena.
func (a arena) strip(buf []words.Word) (Magnitude, error) {
	k := words.LeadingZeroWords(buf)
	if k == 0 {
		return Magnitude{w: a.Keep(buf)}, nil
	}
	if k == len(buf) {
		a.Free(buf)
		return Zero, nil
	}
	short, err := a.Alloc(len(buf) - k)
	if err != nil {
		return Zero, err
	}
	copy(short, buf[k:])
	a.Free(buf)
	return Magnitude{w: a.Keep(short)}, nil
}
