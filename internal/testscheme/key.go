package testscheme

import (
	"bytes"
	"fmt"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
)

// key serves all three roles; magic records which one it was parsed as.
type key struct {
	s        *Scheme
	magic    []byte
	id       []byte
	secret   []byte
	released bool
}

func (k *key) Serialize() ([]byte, error) {
	return concat(k.magic, []byte{version}, k.id, k.secret), nil
}

func (k *key) Release() {
	if k.released {
		return
	}
	k.released = true
	tfhe.ZeroizeBytes(k.secret)
	k.s.live.Add(-1)
}

func (k *key) Encrypt(v uint64, t tfhe.UintType) ([]byte, error) {
	return encodeCiphertext(k.id, v, t)
}

func (k *key) EncryptCompressed(v uint64, t tfhe.UintType) ([]byte, error) {
	return encodeCompressed(k.id, v, t), nil
}

func (k *key) Decrypt(ct []byte, t tfhe.UintType) (uint64, error) {
	id, v, err := parseCiphertext(ct, t)
	if err != nil {
		return 0, err
	}
	if !bytes.Equal(id, k.id) {
		return 0, fmt.Errorf("%w: ciphertext belongs to another key set", tfhe.ErrDecode)
	}
	return v, nil
}

func (k *key) Deserialize(ct []byte, t tfhe.UintType) (tfhe.Value, error) {
	id, v, err := parseCiphertext(ct, t)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(id, k.id) {
		return nil, fmt.Errorf("%w: ciphertext belongs to another key set", tfhe.ErrDecode)
	}
	return &value{id: k.id, v: v, t: t}, nil
}

func (k *key) TrivialEncrypt(v uint64, t tfhe.UintType) (tfhe.Value, error) {
	return &value{id: k.id, v: v & t.Max(), t: t}, nil
}

func (k *key) Binary(op tfhe.Op, lhs, rhs tfhe.Value) (tfhe.Value, error) {
	if k.s.PanicOn != nil && *k.s.PanicOn == op {
		panic(fmt.Sprintf("testscheme: injected panic in %s", op))
	}
	a, b, err := pair(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return &value{id: k.id, v: op.Eval(a.v, b.v, a.t), t: a.t}, nil
}

func (k *key) Unary(op tfhe.UnaryOp, v tfhe.Value) (tfhe.Value, error) {
	a, _, err := pair(v, v)
	if err != nil {
		return nil, err
	}
	return &value{id: k.id, v: op.Eval(a.v, a.t), t: a.t}, nil
}

func (k *key) Cast(v tfhe.Value, to tfhe.UintType) (tfhe.Value, error) {
	a, _, err := pair(v, v)
	if err != nil {
		return nil, err
	}
	return &value{id: k.id, v: tfhe.CastValue(a.v, to), t: to}, nil
}

func (k *key) Select(control, ifTrue, ifFalse tfhe.Value) (tfhe.Value, error) {
	c, a, err := pair(control, ifTrue)
	if err != nil {
		return nil, err
	}
	_, b, err := pair(control, ifFalse)
	if err != nil {
		return nil, err
	}
	if c.v != 0 {
		return &value{id: k.id, v: a.v, t: a.t}, nil
	}
	return &value{id: k.id, v: b.v, t: b.t}, nil
}

type value struct {
	id []byte
	v  uint64
	t  tfhe.UintType
}

func (v *value) Type() tfhe.UintType { return v.t }

func (v *value) Serialize() ([]byte, error) {
	return encodeCiphertext(v.id, v.v, v.t)
}

func (v *value) Release() {}

func pair(a, b tfhe.Value) (*value, *value, error) {
	x, ok1 := a.(*value)
	y, ok2 := b.(*value)
	if !ok1 || !ok2 {
		return nil, nil, fmt.Errorf("%w: value not produced by testscheme", tfhe.ErrArgument)
	}
	if x.t != y.t {
		return nil, nil, fmt.Errorf("%w: %s and %s", tfhe.ErrTypeMismatch, x.t, y.t)
	}
	return x, y, nil
}
