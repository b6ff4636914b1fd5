// Command libtfhe builds the engine as a C shared library:
//
//	go build -buildmode=c-shared -tags tfhers -o libtfhe_go.so ./cmd/libtfhe
//
// Every export is prefixed tfhe_ and mirrors one call of pkg/tfhe/abi.
// Buffers cross the boundary as ByteSliceView (borrowed input) and
// UnmanagedVector (owned output, released with tfhe_destroy_unmanaged_vector).
// Building with -tags tfhe_testscheme swaps in the insecure reference scheme,
// which is only fit for tests; its version string says so.
package main

func main() {}
