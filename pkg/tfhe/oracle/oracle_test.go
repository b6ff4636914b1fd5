package oracle_test

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"

	"github.com/fhenixprotocol/go-tfhe/internal/testscheme"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/oracle"
)

func newEngine(t *testing.T) *tfhe.Engine {
	t.Helper()
	s := testscheme.New()
	km, err := s.GenerateKeys()
	require.NoError(t, err)
	ks := tfhe.NewKeyStore(s, tfhe.WithLogger(logging.Discard()))
	require.NoError(t, ks.LoadServerKey(km.Server))
	require.NoError(t, ks.LoadClientKey(km.Client))
	return tfhe.NewEngine(ks)
}

func TestRequireRoundTrip(t *testing.T) {
	e := newEngine(t)
	o := oracle.NewMemoryOracle(e, oracle.WithLogger(logging.Discard()))
	ct, err := e.NewCiphertext(1, tfhe.Uint8, false)
	require.NoError(t, err)

	got, err := o.GetRequire(ct)
	require.NoError(t, err)
	assert.False(t, got, "no record reads as false")

	require.NoError(t, o.PutRequire(ct, true))
	got, err = o.GetRequire(ct)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestSignedRequireRecords(t *testing.T) {
	e := newEngine(t)
	signer, err := oracle.GenerateSigner()
	require.NoError(t, err)
	o := oracle.NewMemoryOracle(e,
		oracle.WithSigner(signer),
		oracle.WithVerifier(signer.Verifier()),
		oracle.WithLogger(logging.Discard()),
	)
	ct, err := e.NewCiphertext(0, tfhe.Uint16, false)
	require.NoError(t, err)

	require.NoError(t, o.PutRequire(ct, false))
	got, err := o.GetRequire(ct)
	require.NoError(t, err)
	assert.False(t, got)

	other, err := oracle.GenerateSigner()
	require.NoError(t, err)
	strict := oracle.NewMemoryOracle(e,
		oracle.WithSigner(other),
		oracle.WithVerifier(signer.Verifier()),
		oracle.WithLogger(logging.Discard()),
	)
	require.NoError(t, strict.PutRequire(ct, true))
	_, err = strict.GetRequire(ct)
	require.ErrorIs(t, err, oracle.ErrBadSignature)
}

func TestSignerEncoding(t *testing.T) {
	s, err := oracle.GenerateSigner()
	require.NoError(t, err)
	again, err := oracle.SignerFromBytes(s.Bytes())
	require.NoError(t, err)

	digest := tfhe.Keccak256([]byte("record"))
	sig := again.Sign(digest)
	v, err := oracle.VerifierFromBytes(s.Verifier().Bytes())
	require.NoError(t, err)
	assert.True(t, v.Verify(digest, sig))

	digest[0] ^= 1
	assert.False(t, v.Verify(digest, sig))
	assert.False(t, v.Verify(digest, []byte("not der")))

	_, err = oracle.SignerFromBytes([]byte{1, 2})
	require.Error(t, err)
	_, err = oracle.VerifierFromBytes([]byte{1, 2})
	require.Error(t, err)
}

func TestDecryptCaches(t *testing.T) {
	e := newEngine(t)
	o := oracle.NewMemoryOracle(e, oracle.WithLogger(logging.Discard()))
	ct, err := e.NewCiphertext(4000000000, tfhe.Uint32, false)
	require.NoError(t, err)

	s, err := o.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "4000000000", s)

	// A cached answer is served without the client key.
	require.NoError(t, e.Keys().LoadClientKey(mustGenerate(t).Client))
	s, err = o.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "4000000000", s)
}

func mustGenerate(t *testing.T) tfhe.KeyMaterial {
	t.Helper()
	km, err := testscheme.New().GenerateKeys()
	require.NoError(t, err)
	return km
}

func TestSealOutput(t *testing.T) {
	e := newEngine(t)
	o := oracle.NewMemoryOracle(e, oracle.WithLogger(logging.Discard()))
	userPub, userPriv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)
	ct, err := e.NewCiphertext(513, tfhe.Uint16, true)
	require.NoError(t, err)

	sealed, err := o.SealOutput(ct, userPub[:])
	require.NoError(t, err)

	raw, err := hex.DecodeString(sealed)
	require.NoError(t, err)
	var env oracle.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, oracle.SealVersion, env.Version)

	v, err := oracle.Open(sealed, userPriv)
	require.NoError(t, err)
	assert.Equal(t, uint64(513), v.Uint64())

	_, otherPriv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)
	_, err = oracle.Open(sealed, otherPriv)
	require.Error(t, err)

	_, err = o.SealOutput(ct, []byte{1, 2, 3})
	require.ErrorIs(t, err, tfhe.ErrArgument)
}

func TestClosed(t *testing.T) {
	e := newEngine(t)
	o := oracle.NewMemoryOracle(e, oracle.WithLogger(logging.Discard()))
	ct, err := e.NewCiphertext(1, tfhe.Uint8, false)
	require.NoError(t, err)

	require.NoError(t, o.Close())
	require.ErrorIs(t, o.Close(), oracle.ErrClosed)
	require.ErrorIs(t, o.PutRequire(ct, true), oracle.ErrClosed)
	_, err = o.GetRequire(ct)
	require.ErrorIs(t, err, oracle.ErrClosed)
	_, err = o.Decrypt(ct)
	require.ErrorIs(t, err, oracle.ErrClosed)
	_, err = o.SealOutput(ct, make([]byte, 32))
	require.ErrorIs(t, err, oracle.ErrClosed)
}

func TestSealedPlaintextIsFullWord(t *testing.T) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	sealed, err := oracle.Seal(7, pub[:])
	require.NoError(t, err)
	raw, err := hex.DecodeString(sealed)
	require.NoError(t, err)
	var env oracle.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	require.NoError(t, err)
	ephem, err := base64.StdEncoding.DecodeString(env.EphemPublicKey)
	require.NoError(t, err)
	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	require.NoError(t, err)

	plain, ok := box.Open(nil, ct, (*[24]byte)(nonce), (*[32]byte)(ephem), priv)
	require.True(t, ok)
	require.Len(t, plain, 32)
	assert.Equal(t, byte(7), plain[31])
	assert.Equal(t, make([]byte, 31), plain[:31])
}
