// Package buffer implements the ownership protocol used to move variable-length
// byte data (ciphertexts, keys, error messages) between the engine and a caller
// that may use its own memory manager.
//
// Two kinds of buffer exist:
//
//   - View is a borrowed, read-only window onto caller memory. It distinguishes
//     an absent (nil) buffer from a present but empty one. The engine never
//     retains a View past the call that received it and never destroys it.
//   - Owned is a single-owner buffer created by exactly one of FromBytes, Empty
//     or Absent (or FromBytesIn for a foreign allocator). It must be destroyed
//     exactly once with Destroy by whichever side owns it at that point.
//
// Destroy poisons the buffer: the payload is wiped, the storage handed back to
// its Allocator and any further Destroy reports ErrDoubleDestroy. An Owned that
// was handed to a foreign owner with Release reports ErrReleased instead.
//
// # Output slots
//
// Entry points that fill an output parameter call Populate on the caller's
// *Owned. Whatever the slot held before is not freed; the caller is expected to
// pass an absent or already destroyed slot.
//
// # Concurrency
//
// An Owned has a single owner at a time. Reading it on one goroutine while it is
// destroyed on another is a caller error.
package buffer
