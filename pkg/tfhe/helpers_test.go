package tfhe_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhenixprotocol/go-tfhe/internal/testscheme"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
)

type fixture struct {
	scheme *testscheme.Scheme
	keys   *tfhe.KeyStore
	engine *tfhe.Engine
	km     tfhe.KeyMaterial
}

// newFixture returns an engine over a fresh reference key set with the given
// roles resident.
func newFixture(t *testing.T, roles ...tfhe.Role) *fixture {
	t.Helper()
	s := testscheme.New()
	km, err := s.GenerateKeys()
	require.NoError(t, err)
	ks := tfhe.NewKeyStore(s, tfhe.WithLogger(logging.Discard()))
	for _, r := range roles {
		switch r {
		case tfhe.RoleClient:
			require.NoError(t, ks.LoadClientKey(km.Client))
		case tfhe.RoleServer:
			require.NoError(t, ks.LoadServerKey(km.Server))
		case tfhe.RolePublic:
			require.NoError(t, ks.LoadPublicKey(km.Public))
		}
	}
	return &fixture{scheme: s, keys: ks, engine: tfhe.NewEngine(ks), km: km}
}

func fullFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixture(t, tfhe.RoleServer, tfhe.RoleClient, tfhe.RolePublic)
}

func (f *fixture) encrypt(t *testing.T, v uint64, ty tfhe.UintType) []byte {
	t.Helper()
	ct, err := f.engine.Encrypt(v, ty)
	require.NoError(t, err)
	return ct
}

func (f *fixture) decrypt(t *testing.T, ct []byte, ty tfhe.UintType) uint64 {
	t.Helper()
	v, err := f.engine.Decrypt(ct, ty)
	require.NoError(t, err)
	return v
}
