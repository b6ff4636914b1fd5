package tfhe_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
)

func TestMathOperationScenarios(t *testing.T) {
	f := fullFixture(t)
	five := f.encrypt(t, 5, tfhe.Uint8)
	three := f.encrypt(t, 3, tfhe.Uint8)

	sum, err := f.engine.MathOperation(five, three, tfhe.Add, tfhe.Uint8)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), f.decrypt(t, sum, tfhe.Uint8))

	lt, err := f.engine.MathOperation(five, three, tfhe.Lt, tfhe.Uint8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), f.decrypt(t, lt, tfhe.Uint8))
}

func TestMathOperationMatchesPlainArithmetic(t *testing.T) {
	f := fullFixture(t)
	pairs := []struct{ a, b uint64 }{{0, 0}, {7, 3}, {3, 7}, {200, 100}, {255, 255}, {12, 0}}
	for _, ty := range tfhe.UintTypes() {
		for _, op := range tfhe.Ops() {
			for _, p := range pairs {
				name := fmt.Sprintf("%s/%s/%d_%d", ty, op, p.a, p.b)
				t.Run(name, func(t *testing.T) {
					out, err := f.engine.MathOperation(f.encrypt(t, p.a, ty), f.encrypt(t, p.b, ty), op, ty)
					require.NoError(t, err)
					got := f.decrypt(t, out, ty)
					assert.Equal(t, op.Eval(p.a, p.b, ty), got)
					if op.IsComparison() {
						assert.LessOrEqual(t, got, uint64(1))
					}
				})
			}
		}
	}
}

func TestDivisionByZeroPolicy(t *testing.T) {
	f := fullFixture(t)
	for _, ty := range tfhe.UintTypes() {
		a := f.encrypt(t, 77, ty)
		zero := f.encrypt(t, 0, ty)

		q, err := f.engine.MathOperation(a, zero, tfhe.Div, ty)
		require.NoError(t, err)
		assert.Equal(t, ty.Max(), f.decrypt(t, q, ty))

		r, err := f.engine.MathOperation(a, zero, tfhe.Rem, ty)
		require.NoError(t, err)
		assert.Equal(t, uint64(77), f.decrypt(t, r, ty))
	}
}

func TestWrapAndShiftPolicy(t *testing.T) {
	f := fullFixture(t)
	cases := []struct {
		op   tfhe.Op
		a, b uint64
		want uint64
	}{
		{tfhe.Add, 250, 10, 4},
		{tfhe.Sub, 3, 5, 254},
		{tfhe.Mul, 16, 17, 16},
		{tfhe.Shl, 1, 9, 2},
		{tfhe.Shr, 128, 15, 1},
		{tfhe.Min, 9, 4, 4},
		{tfhe.Max, 9, 4, 9},
	}
	for _, c := range cases {
		out, err := f.engine.MathOperation(f.encrypt(t, c.a, tfhe.Uint8), f.encrypt(t, c.b, tfhe.Uint8), c.op, tfhe.Uint8)
		require.NoError(t, err, c.op.String())
		assert.Equal(t, c.want, f.decrypt(t, out, tfhe.Uint8), c.op.String())
	}
}

func TestMathOperationWidthMismatch(t *testing.T) {
	f := fullFixture(t)
	narrow := f.encrypt(t, 1, tfhe.Uint8)
	wide := f.encrypt(t, 1, tfhe.Uint16)

	_, err := f.engine.MathOperation(narrow, wide, tfhe.Add, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrTypeMismatch)
	_, err = f.engine.MathOperation(wide, narrow, tfhe.Add, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrTypeMismatch)
	_, err = f.engine.MathOperation(narrow, narrow, tfhe.Add, tfhe.Uint32)
	require.ErrorIs(t, err, tfhe.ErrTypeMismatch)
}

func TestMathOperationArguments(t *testing.T) {
	f := fullFixture(t)
	a := f.encrypt(t, 1, tfhe.Uint8)

	out, err := f.engine.MathOperation(nil, a, tfhe.Add, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrArgument)
	assert.Nil(t, out)

	_, err = f.engine.MathOperation(a, a, tfhe.Op(18), tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrArgument)
	_, err = f.engine.MathOperation(a, a, tfhe.Add, tfhe.UintType(3))
	require.ErrorIs(t, err, tfhe.ErrArgument)

	_, err = f.engine.MathOperation([]byte{1, 2, 3}, a, tfhe.Add, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrDecode)
}

func TestNoServerKeyGuard(t *testing.T) {
	f := newFixture(t, tfhe.RoleClient)
	a := f.encrypt(t, 1, tfhe.Uint8)

	out, err := f.engine.MathOperation(a, a, tfhe.Add, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrNoKeyLoaded)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "server key")

	// The key check comes before any argument is inspected.
	_, err = f.engine.MathOperation(nil, nil, tfhe.Op(99), tfhe.UintType(99))
	require.ErrorIs(t, err, tfhe.ErrNoKeyLoaded)
	_, err = f.engine.UnaryMathOperation(nil, tfhe.Not, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrNoKeyLoaded)
	_, err = f.engine.CastOperation(a, tfhe.Uint8, tfhe.Uint16)
	require.ErrorIs(t, err, tfhe.ErrNoKeyLoaded)
	_, err = f.engine.Cmux(a, a, a, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrNoKeyLoaded)
	_, err = f.engine.TrivialEncrypt(1, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrNoKeyLoaded)
}

func TestUnaryNot(t *testing.T) {
	f := fullFixture(t)
	for _, ty := range tfhe.UintTypes() {
		out, err := f.engine.UnaryMathOperation(f.encrypt(t, 5, ty), tfhe.Not, ty)
		require.NoError(t, err)
		assert.Equal(t, ty.Max()^5, f.decrypt(t, out, ty))
	}

	_, err := f.engine.UnaryMathOperation(f.encrypt(t, 5, tfhe.Uint8), tfhe.UnaryOp(1), tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrArgument)
}

func TestCastOperation(t *testing.T) {
	f := fullFixture(t)

	out, err := f.engine.CastOperation(f.encrypt(t, 300, tfhe.Uint16), tfhe.Uint16, tfhe.Uint8)
	require.NoError(t, err)
	assert.Equal(t, uint64(44), f.decrypt(t, out, tfhe.Uint8))

	out, err = f.engine.CastOperation(f.encrypt(t, 200, tfhe.Uint8), tfhe.Uint8, tfhe.Uint32)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), f.decrypt(t, out, tfhe.Uint32))

	out, err = f.engine.CastOperation(f.encrypt(t, 7, tfhe.Uint16), tfhe.Uint16, tfhe.Uint16)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), f.decrypt(t, out, tfhe.Uint16))

	_, err = f.engine.CastOperation(f.encrypt(t, 7, tfhe.Uint16), tfhe.Uint8, tfhe.Uint32)
	require.ErrorIs(t, err, tfhe.ErrTypeMismatch)
}

func TestCmux(t *testing.T) {
	f := fullFixture(t)
	ten := f.encrypt(t, 10, tfhe.Uint8)
	twenty := f.encrypt(t, 20, tfhe.Uint8)

	for control, want := range map[uint64]uint64{1: 10, 0: 20, 200: 10} {
		out, err := f.engine.Cmux(f.encrypt(t, control, tfhe.Uint8), ten, twenty, tfhe.Uint8)
		require.NoError(t, err)
		assert.Equal(t, want, f.decrypt(t, out, tfhe.Uint8), "control %d", control)
	}

	_, err := f.engine.Cmux(f.encrypt(t, 1, tfhe.Uint16), ten, twenty, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrTypeMismatch)
	_, err = f.engine.Cmux(nil, ten, twenty, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrArgument)
}

func TestBackendPanicIsContained(t *testing.T) {
	f := fullFixture(t)
	mul := tfhe.Mul
	f.scheme.PanicOn = &mul
	a := f.encrypt(t, 2, tfhe.Uint8)

	out, err := f.engine.MathOperation(a, a, tfhe.Mul, tfhe.Uint8)
	require.ErrorIs(t, err, tfhe.ErrInternalEvaluation)
	assert.Nil(t, out)

	sum, err := f.engine.MathOperation(a, a, tfhe.Add, tfhe.Uint8)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), f.decrypt(t, sum, tfhe.Uint8))
}
