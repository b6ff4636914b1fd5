package tfhe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhenixprotocol/go-tfhe/internal/bindings"
)

func TestBindingTagsMatch(t *testing.T) {
	assert.Equal(t, bindings.Width8, int(Uint8))
	assert.Equal(t, bindings.Width16, int(Uint16))
	assert.Equal(t, bindings.Width32, int(Uint32))
	assert.Equal(t, bindings.OpAdd, int(Add))
	assert.Equal(t, bindings.OpLt, int(Lt))
	assert.Equal(t, bindings.OpRem, int(Rem))
	assert.Equal(t, bindings.OpShr, int(Shr))
}

func TestNativeSchemeUnavailable(t *testing.T) {
	if bindings.Available() {
		t.Skip("native bindings are linked")
	}
	s := NativeScheme()
	_, err := s.GenerateKeys()
	require.Error(t, err)
	require.ErrorIs(t, remapError(err, ErrInternalEvaluation), ErrInternalEvaluation)

	_, err = s.ParseServerKey([]byte{1})
	require.ErrorIs(t, err, ErrDecode)

	ks := NewKeyStore(s)
	require.ErrorIs(t, ks.LoadServerKey([]byte{1}), ErrDecode)
	assert.Equal(t, "unavailable", BackendVersion())
}
