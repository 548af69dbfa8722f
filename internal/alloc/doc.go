// Package alloc provides the word-buffer allocator behind magnitude
// arithmetic.
//
// Pool is the process-wide allocator: buffers are grouped into power-of-two
// size classes and cached on Free, live and cached words are accounted
// against an optional limit, and an exhausted pool runs one collection pass
// before failing with apperrors.MemoryError. Scope gives each operation an
// arena of temporaries that is released with a single deferred call.
package alloc
