package tfhe

import (
	"fmt"

	"github.com/fhenixprotocol/go-tfhe/internal/bindings"
)

// NativeScheme returns the tfhe-rs backend. In builds without the native
// bindings every method fails with ErrNotBuilt or ErrCGONotEnabled.
func NativeScheme() Scheme {
	return nativeScheme{}
}

// NativeAvailable reports whether this binary links the tfhe-rs bindings.
func NativeAvailable() bool { return bindings.Available() }

type nativeScheme struct{}

func (nativeScheme) Name() string { return "tfhe-rs" }

func (nativeScheme) GenerateKeys() (KeyMaterial, error) {
	c, s, p, err := bindings.GenerateKeys()
	if err != nil {
		return KeyMaterial{}, err
	}
	return KeyMaterial{Client: c, Server: s, Public: p}, nil
}

func (nativeScheme) ParseClientKey(data []byte) (ClientKey, error) {
	k, err := bindings.ParseKey(bindings.RoleClient, data)
	if err != nil {
		return nil, decodeFailure("client key", err)
	}
	return &nativeKey{k: k}, nil
}

func (nativeScheme) ParseServerKey(data []byte) (ServerKey, error) {
	k, err := bindings.ParseKey(bindings.RoleServer, data)
	if err != nil {
		return nil, decodeFailure("server key", err)
	}
	return &nativeKey{k: k}, nil
}

func (nativeScheme) ParsePublicKey(data []byte) (PublicKey, error) {
	k, err := bindings.ParseKey(bindings.RolePublic, data)
	if err != nil {
		return nil, decodeFailure("public key", err)
	}
	return &nativeKey{k: k}, nil
}

func (nativeScheme) Expand(compressed []byte, t UintType) ([]byte, error) {
	out, err := bindings.Expand(int(t), compressed)
	if err != nil {
		return nil, decodeFailure("compressed "+t.String(), err)
	}
	return out, nil
}

// nativeKey serves every key role; the role recorded in the handle decides
// which calls tfhe-rs accepts.
type nativeKey struct {
	k *bindings.Key
}

func (n *nativeKey) Serialize() ([]byte, error) { return n.k.Serialize() }

func (n *nativeKey) Release() { n.k.Free() }

func (n *nativeKey) Encrypt(v uint64, t UintType) ([]byte, error) {
	return bindings.Encrypt(n.k, int(t), v)
}

func (n *nativeKey) EncryptCompressed(v uint64, t UintType) ([]byte, error) {
	if n.k.Role() != bindings.RoleClient {
		return nil, fmt.Errorf("%w: compressed encryption needs the client key", ErrNoKeyLoaded)
	}
	return bindings.EncryptCompressed(n.k, int(t), v)
}

func (n *nativeKey) Decrypt(ct []byte, t UintType) (uint64, error) {
	v, err := bindings.Decrypt(n.k, int(t), ct)
	if err != nil {
		return 0, decodeFailure(t.String()+" ciphertext", err)
	}
	return v, nil
}

func (n *nativeKey) Deserialize(ct []byte, t UintType) (Value, error) {
	c, err := bindings.ParseCiphertext(int(t), ct)
	if err != nil {
		return nil, decodeFailure(t.String()+" ciphertext", err)
	}
	return &nativeValue{c: c, t: t}, nil
}

func (n *nativeKey) TrivialEncrypt(v uint64, t UintType) (Value, error) {
	c, err := bindings.TrivialEncrypt(n.k, int(t), v)
	if err != nil {
		return nil, err
	}
	return &nativeValue{c: c, t: t}, nil
}

func (n *nativeKey) Binary(op Op, lhs, rhs Value) (Value, error) {
	a, b, err := nativeValues(lhs, rhs)
	if err != nil {
		return nil, err
	}
	c, err := bindings.Binary(n.k, int(op), a.c, b.c)
	if err != nil {
		return nil, err
	}
	return &nativeValue{c: c, t: a.t}, nil
}

func (n *nativeKey) Unary(op UnaryOp, v Value) (Value, error) {
	a, _, err := nativeValues(v, v)
	if err != nil {
		return nil, err
	}
	switch op {
	case Not:
		c, err := bindings.Not(n.k, a.c)
		if err != nil {
			return nil, err
		}
		return &nativeValue{c: c, t: a.t}, nil
	}
	return nil, fmt.Errorf("%w: unsupported unary operation %s", ErrArgument, op)
}

func (n *nativeKey) Cast(v Value, to UintType) (Value, error) {
	a, _, err := nativeValues(v, v)
	if err != nil {
		return nil, err
	}
	c, err := bindings.Cast(n.k, a.c, int(to))
	if err != nil {
		return nil, err
	}
	return &nativeValue{c: c, t: to}, nil
}

func (n *nativeKey) Select(control, ifTrue, ifFalse Value) (Value, error) {
	c, a, err := nativeValues(control, ifTrue)
	if err != nil {
		return nil, err
	}
	_, b, err := nativeValues(control, ifFalse)
	if err != nil {
		return nil, err
	}
	out, err := bindings.Select(n.k, c.c, a.c, b.c)
	if err != nil {
		return nil, err
	}
	return &nativeValue{c: out, t: a.t}, nil
}

type nativeValue struct {
	c *bindings.Ciphertext
	t UintType
}

func (v *nativeValue) Type() UintType { return v.t }

func (v *nativeValue) Serialize() ([]byte, error) { return v.c.Serialize() }

func (v *nativeValue) Release() { v.c.Free() }

func nativeValues(a, b Value) (*nativeValue, *nativeValue, error) {
	x, ok1 := a.(*nativeValue)
	y, ok2 := b.(*nativeValue)
	if !ok1 || !ok2 {
		return nil, nil, fmt.Errorf("%w: value not produced by the tfhe-rs backend", ErrArgument)
	}
	if x.t != y.t {
		return nil, nil, fmt.Errorf("%w: %s and %s", ErrTypeMismatch, x.t, y.t)
	}
	return x, y, nil
}

func decodeFailure(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecode, what, err)
}
