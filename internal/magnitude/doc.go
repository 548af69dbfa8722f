// Package magnitude implements arbitrary-precision unsigned integer
// arithmetic on canonical magnitudes: construction from two's-complement
// bytes, comparison, addition, subtraction, shifts, schoolbook and Karatsuba
// multiplication, and division by a single word or by Knuth's Algorithm D.
//
// Every result is a fresh buffer obtained from the Calculator's allocator,
// except where an operation documents that it returns an operand.
// Temporaries are released before each operation returns, on success and on
// failure alike.
package magnitude
