package tfhe

import (
	"fmt"
	"strings"
)

// UintType is the declared integer width of a ciphertext. The numeric values are
// the tags used on the wire.
type UintType uint8

const (
	Uint8  UintType = 0
	Uint16 UintType = 1
	Uint32 UintType = 2
)

// UintTypes lists every supported width from narrowest to widest.
func UintTypes() []UintType {
	return []UintType{Uint8, Uint16, Uint32}
}

// Valid reports whether t is a known width tag.
func (t UintType) Valid() bool {
	return t <= Uint32
}

// Bits returns the bit width of t, or 0 for unknown tags.
func (t UintType) Bits() uint {
	switch t {
	case Uint8:
		return 8
	case Uint16:
		return 16
	case Uint32:
		return 32
	default:
		return 0
	}
}

// Max returns the largest value representable at width t.
func (t UintType) Max() uint64 {
	bits := t.Bits()
	if bits == 0 {
		return 0
	}
	return 1<<bits - 1
}

// Fits reports whether v can be encrypted at width t.
func (t UintType) Fits(v uint64) bool {
	return t.Valid() && v <= t.Max()
}

func (t UintType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("UintType(%d)", uint8(t))
	}
	return fmt.Sprintf("uint%d", t.Bits())
}

// ParseUintType accepts "uint8", "uint16" and "uint32" (case-insensitive, the
// "uint" prefix optional).
func ParseUintType(s string) (UintType, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "uint") {
	case "8":
		return Uint8, nil
	case "16":
		return Uint16, nil
	case "32":
		return Uint32, nil
	}
	return 0, fmt.Errorf("%w: unknown integer type %q", ErrArgument, s)
}

// Op is a binary homomorphic operation. Tag values are fixed by the wire ABI.
//
// Arithmetic wraps modulo 2^w. Division by an encrypted zero yields the maximum
// value of the width and the remainder by an encrypted zero yields the
// dividend. Shift amounts are reduced modulo the bit width. Comparisons yield 0
// or 1 at the operand width.
type Op uint8

const (
	Add Op = iota
	Sub
	Mul
	Lt
	Lte
	Div
	Gt
	Gte
	Rem
	BitAnd
	BitOr
	BitXor
	Eq
	Ne
	Min
	Max
	Shl
	Shr

	numOps
)

var opNames = [numOps]string{
	Add: "add", Sub: "sub", Mul: "mul", Lt: "lt", Lte: "lte", Div: "div",
	Gt: "gt", Gte: "gte", Rem: "rem", BitAnd: "and", BitOr: "or", BitXor: "xor",
	Eq: "eq", Ne: "ne", Min: "min", Max: "max", Shl: "shl", Shr: "shr",
}

// Ops lists every binary operation in tag order.
func Ops() []Op {
	ops := make([]Op, 0, numOps)
	for op := Op(0); op < numOps; op++ {
		ops = append(ops, op)
	}
	return ops
}

// Valid reports whether op is a known tag.
func (op Op) Valid() bool {
	return op < numOps
}

// IsComparison reports whether op yields a boolean result.
func (op Op) IsComparison() bool {
	switch op {
	case Lt, Lte, Gt, Gte, Eq, Ne:
		return true
	}
	return false
}

func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
	return opNames[op]
}

// ParseOp maps an operation name such as "add" or "shr" to its tag.
func ParseOp(s string) (Op, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for op, n := range opNames {
		if n == name {
			return Op(op), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown operation %q", ErrArgument, s)
}

// UnaryOp is a unary homomorphic operation.
type UnaryOp uint8

const (
	Not UnaryOp = iota

	numUnaryOps
)

// Valid reports whether op is a known tag.
func (op UnaryOp) Valid() bool {
	return op < numUnaryOps
}

func (op UnaryOp) String() string {
	if op == Not {
		return "not"
	}
	return fmt.Sprintf("UnaryOp(%d)", uint8(op))
}

// Eval computes op on plaintext operands at width t. It is the plain-integer
// analogue of the homomorphic evaluation and is shared by reference backends
// and tests.
func (op Op) Eval(a, b uint64, t UintType) uint64 {
	mask := t.Max()
	a &= mask
	b &= mask
	switch op {
	case Add:
		return (a + b) & mask
	case Sub:
		return (a - b) & mask
	case Mul:
		return (a * b) & mask
	case Div:
		if b == 0 {
			return mask
		}
		return a / b
	case Rem:
		if b == 0 {
			return a
		}
		return a % b
	case BitAnd:
		return a & b
	case BitOr:
		return a | b
	case BitXor:
		return a ^ b
	case Min:
		return min(a, b)
	case Max:
		return max(a, b)
	case Shl:
		return (a << (b % uint64(t.Bits()))) & mask
	case Shr:
		return a >> (b % uint64(t.Bits()))
	case Lt:
		return boolValue(a < b)
	case Lte:
		return boolValue(a <= b)
	case Gt:
		return boolValue(a > b)
	case Gte:
		return boolValue(a >= b)
	case Eq:
		return boolValue(a == b)
	case Ne:
		return boolValue(a != b)
	}
	panic(fmt.Sprintf("tfhe: unhandled op %d", uint8(op)))
}

// Eval computes op on a plaintext operand at width t.
func (op UnaryOp) Eval(a uint64, t UintType) uint64 {
	switch op {
	case Not:
		return ^a & t.Max()
	}
	panic(fmt.Sprintf("tfhe: unhandled unary op %d", uint8(op)))
}

// CastValue converts v from one width to another: truncation when narrowing,
// zero-extension when widening.
func CastValue(v uint64, to UintType) uint64 {
	return v & to.Max()
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
