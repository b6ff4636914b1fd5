package abi_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhenixprotocol/go-tfhe/internal/testscheme"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/abi"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/buffer"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
)

const (
	u8  = uint8(tfhe.Uint8)
	u16 = uint8(tfhe.Uint16)
)

func newSurface(t *testing.T) (*abi.Surface, *buffer.Tracker) {
	t.Helper()
	ks := tfhe.NewKeyStore(testscheme.New(), tfhe.WithLogger(logging.Discard()))
	tr := buffer.NewTracker(nil)
	return abi.New(tfhe.NewEngine(ks), tr), tr
}

func view(s string) buffer.View {
	return buffer.ViewOf([]byte(s))
}

// keyedSurface generates a key set on disk through the surface and loads the
// client and server keys from it.
func keyedSurface(t *testing.T) (*abi.Surface, *buffer.Tracker, string) {
	t.Helper()
	s, tr := newSurface(t)
	dir := t.TempDir()
	c, sk, p := filepath.Join(dir, "cks"), filepath.Join(dir, "sks"), filepath.Join(dir, "pks")

	errOut := buffer.Absent()
	require.True(t, s.GenerateFullKeys(view(c), view(sk), view(p), errOut))
	require.True(t, errOut.IsAbsent())

	for path, load := range map[string]func(buffer.View, *buffer.Owned){
		c: s.LoadClientKey, sk: s.LoadServerKey, p: s.LoadPublicKey,
	} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NotEmpty(t, data)
		load(buffer.ViewOf(data), errOut)
		require.True(t, errOut.IsAbsent(), string(errOut.AsSlice()))
	}
	return s, tr, dir
}

func encrypt(t *testing.T, s *abi.Surface, v uint64, width uint8) *buffer.Owned {
	t.Helper()
	errOut := buffer.Absent()
	ct := s.Encrypt(v, width, errOut)
	require.True(t, errOut.IsAbsent(), string(errOut.AsSlice()))
	require.False(t, ct.IsAbsent())
	return ct
}

func decrypt(t *testing.T, s *abi.Surface, ct *buffer.Owned, width uint8) uint64 {
	t.Helper()
	errOut := buffer.Absent()
	v := s.Decrypt(buffer.ViewOf(ct.AsSlice()), width, errOut)
	require.True(t, errOut.IsAbsent(), string(errOut.AsSlice()))
	return v
}

func destroyAll(t *testing.T, bufs ...*buffer.Owned) {
	t.Helper()
	for _, b := range bufs {
		require.NoError(t, buffer.Destroy(b))
	}
}

func TestScenarioGenerateLoadRoundTrip(t *testing.T) {
	s, tr, _ := keyedSurface(t)
	ct := encrypt(t, s, 42, u8)
	assert.Equal(t, uint64(42), decrypt(t, s, ct, u8))
	destroyAll(t, ct)
	assert.Zero(t, tr.Live())
}

func TestScenarioMath(t *testing.T) {
	s, tr, _ := keyedSurface(t)
	five, three := encrypt(t, s, 5, u8), encrypt(t, s, 3, u8)
	errOut := buffer.Absent()

	sum := s.MathOperation(buffer.ViewOf(five.AsSlice()), buffer.ViewOf(three.AsSlice()), uint8(tfhe.Add), u8, errOut)
	require.True(t, errOut.IsAbsent())
	assert.Equal(t, uint64(8), decrypt(t, s, sum, u8))

	lt := s.MathOperation(buffer.ViewOf(five.AsSlice()), buffer.ViewOf(three.AsSlice()), uint8(tfhe.Lt), u8, errOut)
	require.True(t, errOut.IsAbsent())
	assert.Equal(t, uint64(0), decrypt(t, s, lt, u8))

	destroyAll(t, five, three, sum, lt)
	assert.Zero(t, tr.Live())
}

func TestScenarioCmuxAndCast(t *testing.T) {
	s, tr, _ := keyedSurface(t)
	ten, twenty := encrypt(t, s, 10, u8), encrypt(t, s, 20, u8)
	one, zero := encrypt(t, s, 1, u8), encrypt(t, s, 0, u8)
	errOut := buffer.Absent()

	a := s.Cmux(buffer.ViewOf(one.AsSlice()), buffer.ViewOf(ten.AsSlice()), buffer.ViewOf(twenty.AsSlice()), u8, errOut)
	b := s.Cmux(buffer.ViewOf(zero.AsSlice()), buffer.ViewOf(ten.AsSlice()), buffer.ViewOf(twenty.AsSlice()), u8, errOut)
	assert.Equal(t, uint64(10), decrypt(t, s, a, u8))
	assert.Equal(t, uint64(20), decrypt(t, s, b, u8))

	wide := encrypt(t, s, 300, u16)
	narrow := s.CastOperation(buffer.ViewOf(wide.AsSlice()), u16, u8, errOut)
	require.True(t, errOut.IsAbsent())
	assert.Equal(t, uint64(44), decrypt(t, s, narrow, u8))

	inverted := s.UnaryMathOperation(buffer.ViewOf(zero.AsSlice()), uint8(tfhe.Not), u8, errOut)
	assert.Equal(t, uint64(255), decrypt(t, s, inverted, u8))

	destroyAll(t, ten, twenty, one, zero, a, b, wide, narrow, inverted)
	assert.Zero(t, tr.Live())
}

func TestScenarioNoServerKey(t *testing.T) {
	s, tr := newSurface(t)
	errOut := buffer.Absent()
	out := s.MathOperation(view("a"), view("b"), uint8(tfhe.Add), u8, errOut)

	assert.True(t, out.IsAbsent())
	require.False(t, errOut.IsAbsent())
	assert.Contains(t, string(errOut.AsSlice()), "server key")

	destroyAll(t, out, errOut)
	assert.Zero(t, tr.Live())
}

func TestDecryptSentinel(t *testing.T) {
	s, tr, _ := keyedSurface(t)
	errOut := buffer.Absent()

	v := s.Decrypt(view("garbage"), u8, errOut)
	assert.Equal(t, abi.DecryptFailed, v)
	require.False(t, errOut.IsAbsent())

	// A fresh slot stays absent across a successful decrypt.
	ok := buffer.Absent()
	ct := encrypt(t, s, 255, u8)
	assert.Equal(t, uint64(255), s.Decrypt(buffer.ViewOf(ct.AsSlice()), u8, ok))
	assert.True(t, ok.IsAbsent())

	destroyAll(t, errOut, ct)
	assert.Zero(t, tr.Live())
}

func TestAbsentVersusEmptyInputs(t *testing.T) {
	s, _, _ := keyedSurface(t)

	absent := buffer.Absent()
	s.MathOperation(buffer.AbsentView(), view("x"), uint8(tfhe.Add), u8, absent)
	assert.Contains(t, string(absent.AsSlice()), tfhe.ErrArgument.Error())

	empty := buffer.Absent()
	s.MathOperation(buffer.ViewOf([]byte{}), view("x"), uint8(tfhe.Add), u8, empty)
	assert.Contains(t, string(empty.AsSlice()), tfhe.ErrDecode.Error())

	key := buffer.Absent()
	s.LoadServerKey(buffer.AbsentView(), key)
	assert.Contains(t, string(key.AsSlice()), tfhe.ErrArgument.Error())
}

func TestUnknownTags(t *testing.T) {
	s, _, _ := keyedSurface(t)
	ct := encrypt(t, s, 1, u8)

	errOut := buffer.Absent()
	out := s.MathOperation(buffer.ViewOf(ct.AsSlice()), buffer.ViewOf(ct.AsSlice()), 18, u8, errOut)
	assert.True(t, out.IsAbsent())
	assert.Contains(t, string(errOut.AsSlice()), "unknown operation")

	errOut = buffer.Absent()
	out = s.Encrypt(1, 3, errOut)
	assert.True(t, out.IsAbsent())
	assert.Contains(t, string(errOut.AsSlice()), "unknown integer type")
}

func TestErrorSlotIsReplaced(t *testing.T) {
	s, _ := newSurface(t)
	errOut := buffer.Absent()
	s.Encrypt(1, u8, errOut)
	first := string(errOut.AsSlice())
	require.NoError(t, buffer.Destroy(errOut))

	s.Encrypt(1000, u8, errOut)
	second := string(errOut.AsSlice())
	assert.NotEqual(t, first, second)
	assert.True(t, strings.Contains(second, "does not fit"), second)
}

func TestGetPublicKeyAndCompressed(t *testing.T) {
	s, tr, dir := keyedSurface(t)
	errOut := buffer.Absent()

	pk := s.GetPublicKey(errOut)
	require.True(t, errOut.IsAbsent())
	onDisk, err := os.ReadFile(filepath.Join(dir, "pks"))
	require.NoError(t, err)
	assert.Equal(t, onDisk, pk.AsSlice())

	c := s.EncryptCompressed(77, u16, errOut)
	ex := s.ExpandCompressed(buffer.ViewOf(c.AsSlice()), u16, errOut)
	require.True(t, errOut.IsAbsent())
	assert.Equal(t, uint64(77), decrypt(t, s, ex, u16))

	triv := s.TrivialEncrypt(9, u8, errOut)
	assert.Equal(t, uint64(9), decrypt(t, s, triv, u8))

	destroyAll(t, pk, c, ex, triv)
	assert.Zero(t, tr.Live())
}

func TestGenerateFullKeysFailure(t *testing.T) {
	s, _ := newSurface(t)
	errOut := buffer.Absent()
	assert.False(t, s.GenerateFullKeys(buffer.AbsentView(), view("s"), view("p"), errOut))
	assert.False(t, errOut.IsAbsent())
}

func TestDoubleDestroyDetected(t *testing.T) {
	s, tr, _ := keyedSurface(t)
	ct := encrypt(t, s, 3, u8)
	require.NoError(t, buffer.Destroy(ct))
	require.ErrorIs(t, buffer.Destroy(ct), buffer.ErrDoubleDestroy)
	assert.Zero(t, tr.Live())
}

func TestVersion(t *testing.T) {
	v := abi.Version()
	assert.True(t, strings.HasPrefix(v, "go-tfhe/"), v)
}
