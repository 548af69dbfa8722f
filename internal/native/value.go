package native

import (
	"fmt"

	"github.com/agbru/magcalc/internal/magnitude"
)

// Kind identifies what an operand stack slot holds.
type Kind uint8

const (
	// KindNull is a null object reference. As a magnitude it reads as Zero.
	KindNull Kind = iota
	// KindInt32 is a 32-bit integer (descriptor I).
	KindInt32
	// KindInt64 is a 64-bit integer (descriptor J).
	KindInt64
	// KindMagnitude is a reference to a word array (descriptor [I).
	KindMagnitude
	// KindBytes is a reference to a byte array (descriptor [B).
	KindBytes
)

// String returns the descriptor-style name of k.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt32:
		return "int"
	case KindInt64:
		return "long"
	case KindMagnitude:
		return "int[]"
	case KindBytes:
		return "byte[]"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is one operand stack slot.
type Value struct {
	kind  Kind
	num   int64
	mag   magnitude.Magnitude
	bytes []byte
}

// Null returns a null reference.
func Null() Value { return Value{} }

// Int32 returns an int slot.
func Int32(v int32) Value { return Value{kind: KindInt32, num: int64(v)} }

// Int64 returns a long slot.
func Int64(v int64) Value { return Value{kind: KindInt64, num: v} }

// Mag returns a word array reference. Zero is represented as null.
func Mag(m magnitude.Magnitude) Value {
	if m.IsZero() {
		return Null()
	}
	return Value{kind: KindMagnitude, mag: m}
}

// Bytes returns a byte array reference; a nil slice is null.
func Bytes(b []byte) Value {
	if b == nil {
		return Null()
	}
	return Value{kind: KindBytes, bytes: b}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is a null reference.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt32 returns the int held in v.
func (v Value) AsInt32() (int32, bool) {
	return int32(v.num), v.kind == KindInt32
}

// AsInt64 returns the long held in v.
func (v Value) AsInt64() (int64, bool) {
	return v.num, v.kind == KindInt64
}

// AsMagnitude returns the magnitude referenced by v; null reads as Zero.
func (v Value) AsMagnitude() (magnitude.Magnitude, bool) {
	switch v.kind {
	case KindMagnitude:
		return v.mag, true
	case KindNull:
		return magnitude.Zero, true
	default:
		return magnitude.Zero, false
	}
}

// AsBytes returns the byte array referenced by v; null reads as nil.
func (v Value) AsBytes() ([]byte, bool) {
	switch v.kind {
	case KindBytes:
		return v.bytes, true
	case KindNull:
		return nil, true
	default:
		return nil, false
	}
}

// String renders v for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindInt32, KindInt64:
		return fmt.Sprintf("%s %d", v.kind, v.num)
	case KindMagnitude:
		return "int[] " + v.mag.String()
	case KindBytes:
		return fmt.Sprintf("byte[%d]", len(v.bytes))
	default:
		return v.kind.String()
	}
}
