package tfhe

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/sha3"
)

// Ciphertext pairs a serialized ciphertext with its declared width. The
// Keccak-256 hash of the serialization is computed on first use and cached.
type Ciphertext struct {
	Serialization []byte
	Type          UintType
	// Compact marks a compressed serialization that must be expanded before
	// evaluation.
	Compact bool
	// Random marks a ciphertext created by NewRandomCiphertext.
	Random bool

	hashOnce sync.Once
	hash     [32]byte
}

// Keccak256 returns the legacy Keccak-256 digest of data, as used by the EVM.
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Hash returns the Keccak-256 digest of the serialization.
func (ct *Ciphertext) Hash() [32]byte {
	ct.hashOnce.Do(func() {
		ct.hash = Keccak256(ct.Serialization)
	})
	return ct.hash
}

// HashHex returns Hash as lowercase hex without a 0x prefix.
func (ct *Ciphertext) HashHex() string {
	h := ct.Hash()
	return hex.EncodeToString(h[:])
}

// NewCiphertext encrypts v at width t. With compact set the compressed form is
// kept; otherwise the result is expanded and ready for evaluation.
func (e *Engine) NewCiphertext(v uint64, t UintType, compact bool) (*Ciphertext, error) {
	if compact {
		b, err := e.EncryptCompressed(v, t)
		if err != nil {
			return nil, err
		}
		return &Ciphertext{Serialization: b, Type: t, Compact: true}, nil
	}
	b, err := e.Encrypt(v, t)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{Serialization: b, Type: t}, nil
}

// NewTrivialCiphertext trivially encrypts v at width t.
func (e *Engine) NewTrivialCiphertext(v uint64, t UintType) (*Ciphertext, error) {
	b, err := e.TrivialEncrypt(v, t)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{Serialization: b, Type: t}, nil
}

// NewRandomCiphertext encrypts a uniformly random value of width t.
func (e *Engine) NewRandomCiphertext(t UintType) (*Ciphertext, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown integer type %d", ErrArgument, uint8(t))
	}
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("%w: read randomness: %w", ErrInternalEvaluation, err)
	}
	v := binary.LittleEndian.Uint64(seed[:]) & t.Max()
	ct, err := e.NewCiphertext(v, t, false)
	if err != nil {
		return nil, err
	}
	ct.Random = true
	return ct, nil
}

// CiphertextFromBytes wraps serialized bytes received from elsewhere. Compact
// input is expanded; expanded input is validated by decoding it against the
// resident server key.
func (e *Engine) CiphertextFromBytes(b []byte, t UintType, compact bool) (*Ciphertext, error) {
	if compact {
		expanded, err := e.ExpandCompressed(b, t)
		if err != nil {
			return nil, err
		}
		return &Ciphertext{Serialization: expanded, Type: t}, nil
	}
	err := e.keys.withServer(func(sk ServerKey) error {
		return guard(func() error {
			v, err := decodeOperand(sk, "ciphertext", b, t)
			if err != nil {
				return err
			}
			v.Release()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return &Ciphertext{Serialization: out, Type: t}, nil
}

// Apply evaluates op over two wrapped ciphertexts. The operands must share a
// width.
func (e *Engine) Apply(op Op, lhs, rhs *Ciphertext) (*Ciphertext, error) {
	if lhs == nil || rhs == nil {
		return nil, fmt.Errorf("%w: nil ciphertext", ErrArgument)
	}
	if lhs.Type != rhs.Type {
		return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, lhs.Type, op, rhs.Type)
	}
	a, err := e.expanded(lhs)
	if err != nil {
		return nil, err
	}
	b, err := e.expanded(rhs)
	if err != nil {
		return nil, err
	}
	res, err := e.MathOperation(a, b, op, lhs.Type)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{Serialization: res, Type: lhs.Type}, nil
}

// Not evaluates bitwise negation of ct.
func (e *Engine) Not(ct *Ciphertext) (*Ciphertext, error) {
	if ct == nil {
		return nil, fmt.Errorf("%w: nil ciphertext", ErrArgument)
	}
	a, err := e.expanded(ct)
	if err != nil {
		return nil, err
	}
	res, err := e.UnaryMathOperation(a, Not, ct.Type)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{Serialization: res, Type: ct.Type}, nil
}

// Cast re-encodes ct at width to.
func (e *Engine) Cast(ct *Ciphertext, to UintType) (*Ciphertext, error) {
	if ct == nil {
		return nil, fmt.Errorf("%w: nil ciphertext", ErrArgument)
	}
	a, err := e.expanded(ct)
	if err != nil {
		return nil, err
	}
	res, err := e.CastOperation(a, ct.Type, to)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{Serialization: res, Type: to}, nil
}

// Select evaluates control ? ifTrue : ifFalse over wrapped ciphertexts.
func (e *Engine) Select(control, ifTrue, ifFalse *Ciphertext) (*Ciphertext, error) {
	if control == nil || ifTrue == nil || ifFalse == nil {
		return nil, fmt.Errorf("%w: nil ciphertext", ErrArgument)
	}
	if control.Type != ifTrue.Type || ifTrue.Type != ifFalse.Type {
		return nil, fmt.Errorf("%w: select over %s, %s, %s", ErrTypeMismatch, control.Type, ifTrue.Type, ifFalse.Type)
	}
	parts := make([][]byte, 3)
	for i, ct := range []*Ciphertext{control, ifTrue, ifFalse} {
		b, err := e.expanded(ct)
		if err != nil {
			return nil, err
		}
		parts[i] = b
	}
	res, err := e.Cmux(parts[0], parts[1], parts[2], control.Type)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{Serialization: res, Type: control.Type}, nil
}

// DecryptCiphertext decrypts a wrapped ciphertext.
func (e *Engine) DecryptCiphertext(ct *Ciphertext) (uint64, error) {
	if ct == nil {
		return 0, fmt.Errorf("%w: nil ciphertext", ErrArgument)
	}
	b, err := e.expanded(ct)
	if err != nil {
		return 0, err
	}
	return e.Decrypt(b, ct.Type)
}

func (e *Engine) expanded(ct *Ciphertext) ([]byte, error) {
	if !ct.Compact {
		return ct.Serialization, nil
	}
	return e.ExpandCompressed(ct.Serialization, ct.Type)
}
