package tfhe

import (
	"fmt"
)

// MathOperation evaluates op over two expanded ciphertexts of width t and
// returns the serialized result.
//
// The pipeline is fixed: the server key must be resident, the tags must be
// known, both operands must be present and decode at width t, and the result is
// serialized only when evaluation succeeded.
func (e *Engine) MathOperation(lhs, rhs []byte, op Op, t UintType) ([]byte, error) {
	return e.evaluate(op.String(), t, func(sk ServerKey) (Value, error) {
		if !op.Valid() {
			return nil, fmt.Errorf("%w: unknown operation %d", ErrArgument, uint8(op))
		}
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown integer type %d", ErrArgument, uint8(t))
		}
		a, err := decodeOperand(sk, "lhs", lhs, t)
		if err != nil {
			return nil, err
		}
		defer a.Release()
		b, err := decodeOperand(sk, "rhs", rhs, t)
		if err != nil {
			return nil, err
		}
		defer b.Release()
		return sk.Binary(op, a, b)
	})
}

// UnaryMathOperation evaluates op over an expanded ciphertext of width t.
func (e *Engine) UnaryMathOperation(ct []byte, op UnaryOp, t UintType) ([]byte, error) {
	return e.evaluate(op.String(), t, func(sk ServerKey) (Value, error) {
		if !op.Valid() {
			return nil, fmt.Errorf("%w: unknown unary operation %d", ErrArgument, uint8(op))
		}
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown integer type %d", ErrArgument, uint8(t))
		}
		a, err := decodeOperand(sk, "operand", ct, t)
		if err != nil {
			return nil, err
		}
		defer a.Release()
		return sk.Unary(op, a)
	})
}

// CastOperation re-encodes a ciphertext of width from at width to. Narrowing
// keeps the low bits and widening zero-extends, exactly as for plain unsigned
// integers. Casting to the same width returns an equivalent ciphertext.
func (e *Engine) CastOperation(ct []byte, from, to UintType) ([]byte, error) {
	return e.evaluate("cast", to, func(sk ServerKey) (Value, error) {
		if !from.Valid() || !to.Valid() {
			return nil, fmt.Errorf("%w: unknown integer type in cast %d -> %d", ErrArgument, uint8(from), uint8(to))
		}
		a, err := decodeOperand(sk, "operand", ct, from)
		if err != nil {
			return nil, err
		}
		defer a.Release()
		return sk.Cast(a, to)
	})
}

// Cmux evaluates control ? ifTrue : ifFalse. Every nonzero control value
// counts as true. All three ciphertexts must have width t.
func (e *Engine) Cmux(control, ifTrue, ifFalse []byte, t UintType) ([]byte, error) {
	return e.evaluate("cmux", t, func(sk ServerKey) (Value, error) {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown integer type %d", ErrArgument, uint8(t))
		}
		c, err := decodeOperand(sk, "control", control, t)
		if err != nil {
			return nil, err
		}
		defer c.Release()
		a, err := decodeOperand(sk, "if_true", ifTrue, t)
		if err != nil {
			return nil, err
		}
		defer a.Release()
		b, err := decodeOperand(sk, "if_false", ifFalse, t)
		if err != nil {
			return nil, err
		}
		defer b.Release()
		return sk.Select(c, a, b)
	})
}

// decodeOperand deserializes ct at width t. When decoding fails but ct decodes
// at another width the error is ErrTypeMismatch rather than ErrDecode.
func decodeOperand(sk ServerKey, name string, ct []byte, t UintType) (Value, error) {
	if ct == nil {
		return nil, fmt.Errorf("%w: %s ciphertext is absent", ErrArgument, name)
	}
	v, err := sk.Deserialize(ct, t)
	if err == nil {
		if got := v.Type(); got != t {
			v.Release()
			return nil, fmt.Errorf("%w: %s is %s, declared %s", ErrTypeMismatch, name, got, t)
		}
		return v, nil
	}
	for _, other := range UintTypes() {
		if other == t {
			continue
		}
		if probe, perr := sk.Deserialize(ct, other); perr == nil {
			probe.Release()
			return nil, fmt.Errorf("%w: %s is %s, declared %s", ErrTypeMismatch, name, other, t)
		}
	}
	return nil, fmt.Errorf("%s: %w", name, remapError(err, ErrDecode))
}
