// Package bindings is the thin cgo layer over the tfhe-rs C API.
//
// The C shim in shim.c folds the per-width tfhe-rs entry points (fhe_uint8_*,
// fhe_uint16_*, fhe_uint32_*) into width-dispatched calls so the Go side deals
// with two opaque handle types, Key and Ciphertext. Native buffers returned by
// tfhe-rs are copied into Go memory, wiped and freed before a call returns.
//
// The real implementation is compiled with cgo and the tfhers build tag and
// links against libtfhe (headers and library under lib/ at the module root, or
// on the default search paths). Every other build gets stubs that return
// ErrNotBuilt or ErrCGONotEnabled, so the rest of the module compiles without
// the native toolchain.
//
// # Threading
//
// tfhe-rs keeps the server key in thread-local storage. Evaluations lock the
// calling goroutine to its OS thread and install the key before each call, so
// calls may proceed on any number of goroutines.
package bindings
