// Package abi is the flat call surface of the engine. Inputs arrive as
// borrowed buffer.View values and raw wire tags; outputs leave as
// *buffer.Owned values that belong to the caller. Failures are reported
// through an optional error slot and a sentinel return: an absent buffer,
// false, or DecryptFailed.
//
// The cgo exports in cmd/libtfhe are a thin translation of this package.
package abi

import (
	"fmt"
	"math"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/buffer"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/errchan"
)

// DecryptFailed is the scalar Decrypt returns on failure. No supported width
// can hold it, so it never collides with a decrypted value.
const DecryptFailed uint64 = math.MaxUint64

// Surface binds the call surface to one engine. Returned buffers and error
// messages are drawn from the Surface's allocator.
type Surface struct {
	engine *tfhe.Engine
	alloc  buffer.Allocator
}

// New returns a Surface over engine. A nil allocator draws from buffer.Heap.
func New(engine *tfhe.Engine, alloc buffer.Allocator) *Surface {
	if alloc == nil {
		alloc = buffer.Heap
	}
	return &Surface{engine: engine, alloc: alloc}
}

// Version returns the static version string of the wrapper and its backend.
func Version() string {
	return fmt.Sprintf("go-tfhe/%s %s/%s", tfhe.Version(), tfhe.UpstreamName, tfhe.BackendVersion())
}

func (s *Surface) channel(errOut *buffer.Owned) errchan.Channel {
	return errchan.New(errOut, s.alloc)
}

// owned runs fn and copies its result into a fresh owned buffer. Any failure,
// including a failed allocation, yields an absent buffer.
func (s *Surface) owned(errOut *buffer.Owned, fn func() ([]byte, error)) *buffer.Owned {
	out, st := errchan.Value[*buffer.Owned](s.channel(errOut), nil, func() (*buffer.Owned, error) {
		b, err := fn()
		if err != nil {
			return nil, err
		}
		o, err := buffer.FromBytesIn(s.alloc, b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", tfhe.ErrInternalEvaluation, err)
		}
		return o, nil
	})
	if st != errchan.StatusOK {
		return buffer.Absent()
	}
	return out
}

// GenerateFullKeys writes a fresh key set to the three paths.
func (s *Surface) GenerateFullKeys(clientPath, serverPath, publicPath buffer.View, errOut *buffer.Owned) bool {
	st := s.channel(errOut).Do(func() error {
		for _, p := range []buffer.View{clientPath, serverPath, publicPath} {
			if p.IsAbsent() {
				return fmt.Errorf("%w: key path is absent", tfhe.ErrArgument)
			}
		}
		return s.engine.Keys().GenerateFullKeys(
			string(clientPath.Bytes()), string(serverPath.Bytes()), string(publicPath.Bytes()))
	})
	return st == errchan.StatusOK
}

// LoadServerKey installs the server key serialized in key.
func (s *Surface) LoadServerKey(key buffer.View, errOut *buffer.Owned) {
	s.load(key, errOut, s.engine.Keys().LoadServerKey)
}

// LoadClientKey installs the client key serialized in key.
func (s *Surface) LoadClientKey(key buffer.View, errOut *buffer.Owned) {
	s.load(key, errOut, s.engine.Keys().LoadClientKey)
}

// LoadPublicKey installs the public key serialized in key.
func (s *Surface) LoadPublicKey(key buffer.View, errOut *buffer.Owned) {
	s.load(key, errOut, s.engine.Keys().LoadPublicKey)
}

func (s *Surface) load(key buffer.View, errOut *buffer.Owned, fn func([]byte) error) {
	s.channel(errOut).Do(func() error {
		if key.IsAbsent() {
			return fmt.Errorf("%w: key buffer is absent", tfhe.ErrArgument)
		}
		return fn(key.Bytes())
	})
}

// GetPublicKey returns the serialized resident public key.
func (s *Surface) GetPublicKey(errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, s.engine.Keys().PublicKey)
}

// Encrypt encrypts value at the given width tag.
func (s *Surface) Encrypt(value uint64, width uint8, errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, func() ([]byte, error) {
		return s.engine.Encrypt(value, tfhe.UintType(width))
	})
}

// EncryptCompressed encrypts value into the compressed form.
func (s *Surface) EncryptCompressed(value uint64, width uint8, errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, func() ([]byte, error) {
		return s.engine.EncryptCompressed(value, tfhe.UintType(width))
	})
}

// TrivialEncrypt encodes value without confidentiality.
func (s *Surface) TrivialEncrypt(value uint64, width uint8, errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, func() ([]byte, error) {
		return s.engine.TrivialEncrypt(value, tfhe.UintType(width))
	})
}

// Decrypt returns the plaintext of ct, or DecryptFailed with the error slot
// populated.
func (s *Surface) Decrypt(ct buffer.View, width uint8, errOut *buffer.Owned) uint64 {
	v, _ := errchan.Value(s.channel(errOut), DecryptFailed, func() (uint64, error) {
		return s.engine.Decrypt(ct.Bytes(), tfhe.UintType(width))
	})
	return v
}

// ExpandCompressed expands a compressed ciphertext.
func (s *Surface) ExpandCompressed(ct buffer.View, width uint8, errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, func() ([]byte, error) {
		return s.engine.ExpandCompressed(ct.Bytes(), tfhe.UintType(width))
	})
}

// MathOperation evaluates the binary operation tagged op.
func (s *Surface) MathOperation(lhs, rhs buffer.View, op, width uint8, errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, func() ([]byte, error) {
		return s.engine.MathOperation(lhs.Bytes(), rhs.Bytes(), tfhe.Op(op), tfhe.UintType(width))
	})
}

// UnaryMathOperation evaluates the unary operation tagged op.
func (s *Surface) UnaryMathOperation(ct buffer.View, op, width uint8, errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, func() ([]byte, error) {
		return s.engine.UnaryMathOperation(ct.Bytes(), tfhe.UnaryOp(op), tfhe.UintType(width))
	})
}

// CastOperation re-encodes ct from one width tag to another.
func (s *Surface) CastOperation(ct buffer.View, from, to uint8, errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, func() ([]byte, error) {
		return s.engine.CastOperation(ct.Bytes(), tfhe.UintType(from), tfhe.UintType(to))
	})
}

// Cmux selects between ifTrue and ifFalse under an encrypted control.
func (s *Surface) Cmux(control, ifTrue, ifFalse buffer.View, width uint8, errOut *buffer.Owned) *buffer.Owned {
	return s.owned(errOut, func() ([]byte, error) {
		return s.engine.Cmux(control.Bytes(), ifTrue.Bytes(), ifFalse.Bytes(), tfhe.UintType(width))
	})
}
