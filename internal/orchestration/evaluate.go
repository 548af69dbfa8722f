package orchestration

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/agbru/magcalc/internal/config"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/native"
)

// Result is the outcome of one evaluated operation. Value is a heap copy
// that outlives the execution it was computed on.
type Result struct {
	Op       string
	Value    magnitude.Magnitude
	Sign     int32 // set by cmp
	Duration time.Duration
}

// IsComparison reports whether r holds a comparison rather than a magnitude.
func (r Result) IsComparison() bool { return r.Op == "cmp" }

// Format renders the value of r.
func (r Result) Format(hex bool) string {
	if r.IsComparison() {
		return fmt.Sprintf("%d", r.Sign)
	}
	return format.FormatMagnitude(r.Value, hex)
}

// FormatContext is Format bounded by ctx, for callers serving untrusted
// sizes.
func (r Result) FormatContext(ctx context.Context, hex bool) (string, error) {
	if r.IsComparison() {
		return r.Format(hex), nil
	}
	return format.FormatMagnitudeContext(ctx, r.Value, hex)
}

type binding struct {
	name, descriptor string
}

var bindings = map[string]binding{
	"add": {native.MethodAdd, native.DescBinary},
	"sub": {native.MethodSubtract, native.DescBinary},
	"mul": {native.MethodMultiply, native.DescBinary},
	"div": {native.MethodDivide, native.DescBinary},
	"rem": {native.MethodRemainder, native.DescBinary},
	"cmp": {native.MethodCompare, native.DescCompare},
	"shl": {native.MethodShiftLeft, native.DescShift},
	"shr": {native.MethodShiftRight, native.DescShift},
}

// Evaluate parses operands, runs op through inv on e and returns the result.
// Operand buffers and intermediate results stay owned by e; the caller
// closes it. Magnitude operands are decimal or 0x-prefixed hexadecimal; the
// single operand of mag is a hex byte string read as two's complement.
func Evaluate(ctx context.Context, inv *native.Invoker, e *native.Execution, op string, operands []string) (Result, error) {
	arity, ok := config.OperationArity(op)
	if !ok {
		return Result{}, apperrors.ValidationError{Field: "op", Message: fmt.Sprintf("unknown operation %q", op)}
	}
	if len(operands) != arity {
		return Result{}, apperrors.ValidationError{
			Field:   "operands",
			Message: fmt.Sprintf("%s takes %d operands, got %d", op, arity, len(operands)),
		}
	}

	start := time.Now()
	var out native.Value
	var err error
	if op == "mag" {
		out, err = evaluateTwosComplement(ctx, inv, e, operands[0])
	} else {
		out, err = evaluateBinary(ctx, inv, e, op, operands)
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{Op: op, Duration: time.Since(start)}
	if op == "cmp" {
		res.Sign, _ = out.AsInt32()
		return res, nil
	}
	m, _ := out.AsMagnitude()
	res.Value = magnitude.FromWords(slices.Clone(m.Words()))
	return res, nil
}

func evaluateTwosComplement(ctx context.Context, inv *native.Invoker, e *native.Execution, operand string) (native.Value, error) {
	raw, err := format.ParseHexBytes(operand)
	if err != nil {
		return native.Value{}, err
	}
	if len(raw) == 0 {
		return native.Null(), nil
	}
	return inv.Call(ctx, e, native.MethodMake, native.DescFromBytes,
		native.Bytes(raw), native.Int32(0), native.Int32(int32(len(raw))))
}

func evaluateBinary(ctx context.Context, inv *native.Invoker, e *native.Execution, op string, operands []string) (native.Value, error) {
	b := bindings[op]
	x, err := load(ctx, inv, e, operands[0])
	if err != nil {
		return native.Value{}, err
	}

	var y native.Value
	if op == "shl" || op == "shr" {
		n, err := format.ParseShift(operands[1])
		if err != nil {
			return native.Value{}, err
		}
		y = native.Int32(n)
	} else {
		if y, err = load(ctx, inv, e, operands[1]); err != nil {
			return native.Value{}, err
		}
	}

	if op == "sub" {
		c, err := inv.Call(ctx, e, native.MethodCompare, native.DescCompare, x, y)
		if err != nil {
			return native.Value{}, err
		}
		if sign, _ := c.AsInt32(); sign < 0 {
			return native.Value{}, apperrors.ValidationError{
				Field:   "operands",
				Message: "sub requires the first operand to be at least the second",
			}
		}
	}
	return inv.Call(ctx, e, b.name, b.descriptor, x, y)
}

// load builds a magnitude for an unsigned operand through the adapter, so
// that its buffer is owned by e.
func load(ctx context.Context, inv *native.Invoker, e *native.Execution, operand string) (native.Value, error) {
	raw, err := format.ParseOperand(operand)
	if err != nil {
		return native.Value{}, err
	}
	if len(raw) == 0 {
		return native.Null(), nil
	}
	return inv.Call(ctx, e, native.MethodMake, native.DescFromSignum,
		native.Int32(1), native.Bytes(raw), native.Int32(0), native.Int32(int32(len(raw))))
}
