// Package words provides the low-level kernels that operate on big-endian
// buffers of 32-bit words: comparison, addition with carry, subtraction with
// borrow, shifts, schoolbook multiplication and division by a single word or
// by a normalized multi-word divisor (Knuth's Algorithm D).
//
// Index 0 of every buffer holds the most significant word. Buffers may carry
// leading zero words; the kernels treat a shorter operand as if it were
// left-padded with zeros. No kernel allocates: the caller provides every
// destination buffer and its length is taken from the slice header.
package words
