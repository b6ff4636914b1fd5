package bindings

import (
	"errors"
	"unsafe"
)

var (
	// ErrNotBuilt reports that the native tfhe-rs bindings were not linked into
	// the current binary. Build with -tags tfhers and a libtfhe on the linker
	// path to enable them.
	ErrNotBuilt = errors.New("tfhe/internal/bindings: native bindings not built")

	// ErrCGONotEnabled signals that the package was compiled without cgo and
	// therefore cannot talk to the native library.
	ErrCGONotEnabled = errors.New("tfhe/internal/bindings: cgo not enabled")

	// ErrNative wraps a nonzero status returned by the native library.
	ErrNative = errors.New("tfhe/internal/bindings: native call failed")

	// ErrBadArgument reports a width, role or op code the shim does not know.
	ErrBadArgument = errors.New("tfhe/internal/bindings: bad argument")
)

// Role selects the key kind handled by a native call.
type Role int

const (
	RoleClient Role = 0
	RoleServer Role = 1
	RolePublic Role = 2
)

// Width codes. They equal the wire tags of the public UintType.
const (
	Width8  = 0
	Width16 = 1
	Width32 = 2
)

// Binary op codes understood by the shim. They equal the wire tags of the
// public Op type.
const (
	OpAdd = iota
	OpSub
	OpMul
	OpLt
	OpLte
	OpDiv
	OpGt
	OpGte
	OpRem
	OpBitAnd
	OpBitOr
	OpBitXor
	OpEq
	OpNe
	OpMin
	OpMax
	OpShl
	OpShr
)

// Key is an owned native key handle. Free releases it.
type Key struct {
	role Role
	ptr  unsafe.Pointer
}

// Role returns the kind of key k holds.
func (k *Key) Role() Role { return k.role }

// Ciphertext is an owned native FheUint handle of a fixed width.
type Ciphertext struct {
	width int
	ptr   unsafe.Pointer
}

// Width returns the width code of c.
func (c *Ciphertext) Width() int { return c.width }
