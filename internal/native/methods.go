package native

import (
	"fmt"
	"io"
	"strings"

	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/magnitude"
)

// Descriptors of the native methods.
const (
	DescFromLong   = "(J)[I"
	DescFromBytes  = "([BII)[I"
	DescFromSignum = "(I[BII)[I"
	DescCompare    = "([I[I)I"
	DescBinary     = "([I[I)[I"
	DescShift      = "([II)[I"
)

// Names of the native methods.
const (
	MethodMake       = "makeMagnitude"
	MethodCompare    = "compareMagnitude"
	MethodAdd        = "add"
	MethodSubtract   = "subtract"
	MethodMultiply   = "multiply"
	MethodDivide     = "divide"
	MethodRemainder  = "remainder"
	MethodShiftLeft  = "shiftLeft"
	MethodShiftRight = "shiftRight"
)

// Handler implements a native method. It pops its operands from the
// execution and pushes exactly one result. A handler pushes only after every
// fallible step has succeeded.
type Handler func(e *Execution) error

// Method is one entry of the native method table.
type Method struct {
	Name       string
	Descriptor string
	Handler    Handler
}

// Signature returns name followed by descriptor.
func (m Method) Signature() string { return m.Name + m.Descriptor }

// MethodTable resolves native methods by name and descriptor.
type MethodTable struct {
	methods []Method
	index   map[string]int
}

// NewMethodTable builds a table from methods. Later entries with the same
// signature replace earlier ones.
func NewMethodTable(methods ...Method) *MethodTable {
	t := &MethodTable{index: make(map[string]int, len(methods))}
	for _, m := range methods {
		if i, ok := t.index[m.Signature()]; ok {
			t.methods[i] = m
			continue
		}
		t.index[m.Signature()] = len(t.methods)
		t.methods = append(t.methods, m)
	}
	return t
}

// DefaultMethodTable returns the magnitude native class.
func DefaultMethodTable() *MethodTable {
	return NewMethodTable(
		Method{MethodMake, DescFromLong, makeFromLong},
		Method{MethodMake, DescFromBytes, makeFromBytes},
		Method{MethodMake, DescFromSignum, makeFromSignum},
		Method{MethodCompare, DescCompare, compareMagnitude},
		Method{MethodAdd, DescBinary, binary((*magnitude.Calculator).Add)},
		Method{MethodSubtract, DescBinary, binary((*magnitude.Calculator).Subtract)},
		Method{MethodMultiply, DescBinary, binary((*magnitude.Calculator).Multiply)},
		Method{MethodDivide, DescBinary, binary((*magnitude.Calculator).Divide)},
		Method{MethodRemainder, DescBinary, binary((*magnitude.Calculator).Remainder)},
		Method{MethodShiftLeft, DescShift, shift(true)},
		Method{MethodShiftRight, DescShift, shift(false)},
	)
}

// Lookup returns the method with the given name and descriptor.
func (t *MethodTable) Lookup(name, descriptor string) (Method, error) {
	i, ok := t.index[name+descriptor]
	if !ok {
		return Method{}, apperrors.LinkError{Name: name, Descriptor: descriptor}
	}
	return t.methods[i], nil
}

// Methods returns the table entries in registration order.
func (t *MethodTable) Methods() []Method {
	return append([]Method(nil), t.methods...)
}

// Len returns the number of methods.
func (t *MethodTable) Len() int { return len(t.methods) }

// WriteTo writes one "name descriptor" line per method.
func (t *MethodTable) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	for _, m := range t.methods {
		fmt.Fprintf(&sb, "%-16s %s\n", m.Name, m.Descriptor)
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func makeFromLong(e *Execution) error {
	v, err := e.PopInt64()
	if err != nil {
		return err
	}
	m, err := e.calc.FromInt64(v)
	if err != nil {
		return err
	}
	e.pushResult(m)
	return nil
}

func makeFromBytes(e *Execution) error {
	n, err := e.PopInt32()
	if err != nil {
		return err
	}
	off, err := e.PopInt32()
	if err != nil {
		return err
	}
	buf, err := e.PopBytes()
	if err != nil {
		return err
	}
	m, err := e.calc.FromBytes(buf, int(off), int(n))
	if err != nil {
		return err
	}
	e.pushResult(m)
	return nil
}

func makeFromSignum(e *Execution) error {
	n, err := e.PopInt32()
	if err != nil {
		return err
	}
	off, err := e.PopInt32()
	if err != nil {
		return err
	}
	buf, err := e.PopBytes()
	if err != nil {
		return err
	}
	signum, err := e.PopInt32()
	if err != nil {
		return err
	}
	m, err := e.calc.FromSignedBytes(signum, buf, int(off), int(n))
	if err != nil {
		return err
	}
	e.pushResult(m)
	return nil
}

func compareMagnitude(e *Execution) error {
	y, err := e.PopMagnitude()
	if err != nil {
		return err
	}
	x, err := e.PopMagnitude()
	if err != nil {
		return err
	}
	e.PushInt32(int32(e.calc.Compare(x, y)))
	return nil
}

// binary adapts a two-operand calculator method. The first-pushed operand
// is the left-hand side.
func binary(op func(*magnitude.Calculator, magnitude.Magnitude, magnitude.Magnitude) (magnitude.Magnitude, error)) Handler {
	return func(e *Execution) error {
		y, err := e.PopMagnitude()
		if err != nil {
			return err
		}
		x, err := e.PopMagnitude()
		if err != nil {
			return err
		}
		m, err := op(e.calc, x, y)
		if err != nil {
			return err
		}
		e.pushResult(m, x, y)
		return nil
	}
}

// shift adapts the shift methods. A negative count shifts the other way.
func shift(left bool) Handler {
	return func(e *Execution) error {
		n, err := e.PopInt32()
		if err != nil {
			return err
		}
		x, err := e.PopMagnitude()
		if err != nil {
			return err
		}
		toLeft := left
		count := int64(n)
		if count < 0 {
			toLeft, count = !toLeft, -count
		}
		var m magnitude.Magnitude
		if toLeft {
			m, err = e.calc.ShiftLeft(x, uint(count))
		} else {
			m, err = e.calc.ShiftRight(x, uint(count))
		}
		if err != nil {
			return err
		}
		e.pushResult(m, x)
		return nil
	}
}
