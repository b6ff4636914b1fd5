package tfhe

import (
	"context"
	"fmt"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
)

// Engine evaluates operations against the keys resident in a KeyStore. It holds
// no key state of its own; every call reads the store under its read lock, so
// any number of calls may run concurrently on independent goroutines.
type Engine struct {
	keys *KeyStore
	log  logging.Logger
}

// NewEngine returns an Engine bound to keys.
func NewEngine(keys *KeyStore) *Engine {
	return &Engine{keys: keys, log: keys.log.With("component", "engine")}
}

// Keys returns the store the engine reads from.
func (e *Engine) Keys() *KeyStore {
	return e.keys
}

// Encrypt encrypts v at width t with the resident client key, or with the
// public key when no client key is resident. The result is an expanded
// ciphertext.
func (e *Engine) Encrypt(v uint64, t UintType) ([]byte, error) {
	if err := checkScalar(v, t); err != nil {
		return nil, err
	}
	var out []byte
	err := e.keys.withEncryptor(func(enc encryptor) error {
		return guard(func() (err error) {
			out, err = enc.Encrypt(v, t)
			return err
		})
	})
	if err := e.done("encrypt", t, remapError(err, ErrInternalEvaluation)); err != nil {
		return nil, err
	}
	return out, nil
}

// EncryptCompressed encrypts v at width t into the compressed form accepted by
// ExpandCompressed.
func (e *Engine) EncryptCompressed(v uint64, t UintType) ([]byte, error) {
	if err := checkScalar(v, t); err != nil {
		return nil, err
	}
	var out []byte
	err := e.keys.withEncryptor(func(enc encryptor) error {
		return guard(func() (err error) {
			out, err = enc.EncryptCompressed(v, t)
			return err
		})
	})
	if err := e.done("encrypt_compressed", t, remapError(err, ErrInternalEvaluation)); err != nil {
		return nil, err
	}
	return out, nil
}

// TrivialEncrypt encodes v at width t without confidentiality. It needs only
// the server key.
func (e *Engine) TrivialEncrypt(v uint64, t UintType) ([]byte, error) {
	if err := checkScalar(v, t); err != nil {
		return nil, err
	}
	return e.evaluate("trivial_encrypt", t, func(sk ServerKey) (Value, error) {
		return sk.TrivialEncrypt(v, t)
	})
}

// Decrypt decrypts an expanded ciphertext of width t with the resident client
// key.
func (e *Engine) Decrypt(ct []byte, t UintType) (uint64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: unknown integer type %d", ErrArgument, uint8(t))
	}
	if ct == nil {
		return 0, fmt.Errorf("%w: ciphertext is absent", ErrArgument)
	}
	var out uint64
	err := e.keys.withClient(func(ck ClientKey) error {
		return guard(func() (err error) {
			out, err = ck.Decrypt(ct, t)
			return err
		})
	})
	if err != nil {
		return 0, e.done("decrypt", t, remapError(err, ErrDecode))
	}
	if out > t.Max() {
		return 0, e.done("decrypt", t, fmt.Errorf("%w: decrypted value exceeds %s", ErrInternalEvaluation, t))
	}
	return out, e.done("decrypt", t, nil)
}

// ExpandCompressed converts a compressed ciphertext of width t into its
// expanded serialized form.
func (e *Engine) ExpandCompressed(ct []byte, t UintType) ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown integer type %d", ErrArgument, uint8(t))
	}
	if ct == nil {
		return nil, fmt.Errorf("%w: compressed ciphertext is absent", ErrArgument)
	}
	var out []byte
	err := guard(func() (err error) {
		out, err = e.keys.scheme.Expand(ct, t)
		return err
	})
	if err := e.done("expand", t, remapError(err, ErrDecode)); err != nil {
		return nil, err
	}
	return out, nil
}

// evaluate runs fn under the server key and serializes its result. The result
// must have width want.
func (e *Engine) evaluate(name string, want UintType, fn func(ServerKey) (Value, error)) ([]byte, error) {
	var out []byte
	err := e.keys.withServer(func(sk ServerKey) error {
		return guard(func() error {
			res, err := fn(sk)
			if err != nil {
				return remapError(err, ErrInternalEvaluation)
			}
			defer res.Release()
			if got := res.Type(); got != want {
				return fmt.Errorf("%w: backend returned %s, want %s", ErrInternalEvaluation, got, want)
			}
			b, err := res.Serialize()
			if err != nil {
				return remapError(err, ErrInternalEvaluation)
			}
			out = b
			return nil
		})
	})
	if err != nil {
		return nil, e.done(name, want, err)
	}
	return out, e.done(name, want, nil)
}

func (e *Engine) done(name string, t UintType, err error) error {
	ctx := context.Background()
	if err != nil {
		e.log.Warn(ctx, "operation failed", "op", name, "type", t.String(), "kind", KindOf(err).String(), "error", err)
		return err
	}
	e.log.Debug(ctx, "operation done", "op", name, "type", t.String())
	return nil
}

func checkScalar(v uint64, t UintType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown integer type %d", ErrArgument, uint8(t))
	}
	if !t.Fits(v) {
		return fmt.Errorf("%w: %d does not fit in %s", ErrRange, v, t)
	}
	return nil
}
