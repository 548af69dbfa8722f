// Package native exposes the magnitude operations through a fixed call
// convention: each method pops its operands from an Execution's operand
// stack (first-pushed operand deepest) and pushes exactly one result.
//
// Methods are resolved by name and descriptor through a MethodTable:
//
//	makeMagnitude    (J)[I        long -> magnitude
//	makeMagnitude    ([BII)[I     byte[], off, len -> magnitude
//	makeMagnitude    (I[BII)[I    signum, byte[], off, len -> magnitude
//	compareMagnitude ([I[I)I      x, y -> int
//	add ... remainder ([I[I)[I    x, y -> magnitude
//	shiftLeft/Right  ([II)[I      x, n -> magnitude
//
// The zero magnitude travels as a null reference. Runtime exceptions raised
// by a method are returned from Invoker.Invoke as typed errors and leave the
// operand stack as it was.
package native
