package native

import (
	"unsafe"

	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/words"
)

// Execution is one logical thread of the runtime: an operand stack plus the
// magnitudes its native calls have produced. Executions are independent and
// may run concurrently as long as they share only the calculator's
// allocator. An Execution itself is not safe for concurrent use.
//
// Magnitudes pushed by native methods stay valid until Close, which returns
// each of them to the allocator exactly once.
type Execution struct {
	calc  *magnitude.Calculator
	stack []Value
	heap  map[*words.Word]magnitude.Magnitude
}

// NewExecution creates an execution whose native calls draw buffers through
// calc.
func NewExecution(calc *magnitude.Calculator) *Execution {
	return &Execution{
		calc: calc,
		heap: make(map[*words.Word]magnitude.Magnitude),
	}
}

// Calculator returns the calculator backing e.
func (e *Execution) Calculator() *magnitude.Calculator { return e.calc }

// Depth returns the number of values on the operand stack.
func (e *Execution) Depth() int { return len(e.stack) }

// Push pushes v. The first value pushed ends up deepest.
func (e *Execution) Push(v Value) { e.stack = append(e.stack, v) }

// PushInt32 pushes an int.
func (e *Execution) PushInt32(v int32) { e.Push(Int32(v)) }

// PushInt64 pushes a long.
func (e *Execution) PushInt64(v int64) { e.Push(Int64(v)) }

// PushBytes pushes a byte array reference.
func (e *Execution) PushBytes(b []byte) { e.Push(Bytes(b)) }

// PushMagnitude pushes a magnitude the caller owns. It is not released by
// Close.
func (e *Execution) PushMagnitude(m magnitude.Magnitude) { e.Push(Mag(m)) }

// Pop removes and returns the top value.
func (e *Execution) Pop() (Value, error) {
	n := len(e.stack)
	if n == 0 {
		return Value{}, apperrors.StackError{Expected: "value", Found: "empty stack"}
	}
	v := e.stack[n-1]
	e.stack = e.stack[:n-1]
	return v, nil
}

// Peek returns the top value without removing it.
func (e *Execution) Peek() (Value, bool) {
	if len(e.stack) == 0 {
		return Value{}, false
	}
	return e.stack[len(e.stack)-1], true
}

// PopInt32 pops an int.
func (e *Execution) PopInt32() (int32, error) {
	v, err := e.pop(KindInt32)
	if err != nil {
		return 0, err
	}
	i, _ := v.AsInt32()
	return i, nil
}

// PopInt64 pops a long.
func (e *Execution) PopInt64() (int64, error) {
	v, err := e.pop(KindInt64)
	if err != nil {
		return 0, err
	}
	i, _ := v.AsInt64()
	return i, nil
}

// PopMagnitude pops a word array reference; null pops as Zero.
func (e *Execution) PopMagnitude() (magnitude.Magnitude, error) {
	v, err := e.pop(KindMagnitude)
	if err != nil {
		return magnitude.Zero, err
	}
	m, _ := v.AsMagnitude()
	return m, nil
}

// PopBytes pops a byte array reference; null pops as nil.
func (e *Execution) PopBytes() ([]byte, error) {
	v, err := e.pop(KindBytes)
	if err != nil {
		return nil, err
	}
	b, _ := v.AsBytes()
	return b, nil
}

// pop removes the top value after checking that it is of kind want. Object
// kinds also accept null.
func (e *Execution) pop(want Kind) (Value, error) {
	v, ok := e.Peek()
	if !ok {
		return Value{}, apperrors.StackError{Expected: want.String(), Found: "empty stack"}
	}
	if v.kind != want && !(v.kind == KindNull && isReference(want)) {
		return Value{}, apperrors.StackError{Expected: want.String(), Found: v.kind.String()}
	}
	e.stack = e.stack[:len(e.stack)-1]
	return v, nil
}

func isReference(k Kind) bool {
	return k == KindMagnitude || k == KindBytes
}

// mark returns the current stack depth for restore.
func (e *Execution) mark() int { return len(e.stack) }

// restore puts back every value popped since mark. Pop only reslices, so
// the popped slots are still in the backing array.
func (e *Execution) restore(mark int) {
	e.stack = e.stack[:mark]
}

// pushResult pushes a magnitude produced by a native method and records it
// for release at Close. A result that is one of the call's operands (as
// remainder returns its dividend when it is the smaller value) is already
// owned by whoever pushed that operand and is not recorded again.
func (e *Execution) pushResult(m magnitude.Magnitude, operands ...magnitude.Magnitude) {
	e.Push(Mag(m))
	if m.IsZero() {
		return
	}
	for _, op := range operands {
		if sameBuffer(m, op) {
			return
		}
	}
	e.heap[unsafe.SliceData(m.Words())] = m
}

// Owned returns the number of magnitudes awaiting release.
func (e *Execution) Owned() int { return len(e.heap) }

// Close releases every magnitude produced by native calls on e and empties
// the stack. Values popped earlier must not be used afterwards; e itself can
// be reused.
func (e *Execution) Close() {
	for k, m := range e.heap {
		e.calc.Release(m)
		delete(e.heap, k)
	}
	clear(e.stack)
	e.stack = e.stack[:0]
}

func sameBuffer(a, b magnitude.Magnitude) bool {
	return !b.IsZero() && unsafe.SliceData(a.Words()) == unsafe.SliceData(b.Words())
}
