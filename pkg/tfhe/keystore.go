package tfhe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
)

// Role names one of the three key roles held by a KeyStore.
type Role uint8

const (
	RoleClient Role = iota
	RoleServer
	RolePublic
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client key"
	case RoleServer:
		return "server key"
	case RolePublic:
		return "public key"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// KeyStore holds at most one resident key per role. A single reader-writer
// lock guards the resident set: evaluations take the read side, loads and
// generation take the write side, so a reader never observes a half-installed
// key.
//
// Independent KeyStores share nothing and can be used side by side.
type KeyStore struct {
	scheme   Scheme
	log      logging.Logger
	id       uuid.UUID
	zeroize  bool
	fileMode os.FileMode

	mu     sync.RWMutex
	closed bool
	client ClientKey
	server ServerKey
	public PublicKey
}

// errStoreClosed is reported by every key access after the owning Library
// was closed.
var errStoreClosed = fmt.Errorf("%w: %w", ErrNoKeyLoaded, ErrLibraryClosed)

// Option configures a KeyStore.
type Option func(*KeyStore)

// WithLogger routes KeyStore and Engine logs to l.
func WithLogger(l logging.Logger) Option {
	return func(k *KeyStore) {
		if l != nil {
			k.log = l
		}
	}
}

// WithZeroization wipes key bytes read from disk once they are parsed.
func WithZeroization(enabled bool) Option {
	return func(k *KeyStore) { k.zeroize = enabled }
}

// NewKeyStore returns an empty KeyStore over scheme.
func NewKeyStore(scheme Scheme, opts ...Option) *KeyStore {
	k := &KeyStore{
		scheme:   scheme,
		log:      logging.New(nil),
		id:       uuid.New(),
		fileMode: 0o600,
	}
	for _, opt := range opts {
		opt(k)
	}
	k.log = k.log.With("keystore", k.id.String(), "scheme", scheme.Name())
	return k
}

// ID identifies the store in logs.
func (k *KeyStore) ID() string {
	return k.id.String()
}

// Scheme returns the backend the store parses keys with.
func (k *KeyStore) Scheme() Scheme {
	return k.scheme
}

// LoadServerKey parses data and installs it as the resident server key. On
// failure the previously resident server key is left in place.
func (k *KeyStore) LoadServerKey(data []byte) error {
	return k.load(RoleServer, data)
}

// LoadClientKey parses data and installs it as the resident client key.
func (k *KeyStore) LoadClientKey(data []byte) error {
	return k.load(RoleClient, data)
}

// LoadPublicKey parses data and installs it as the resident public key.
func (k *KeyStore) LoadPublicKey(data []byte) error {
	return k.load(RolePublic, data)
}

func (k *KeyStore) load(role Role, data []byte) error {
	ctx := context.Background()
	if len(data) == 0 {
		return fmt.Errorf("%w: empty %s", ErrDecode, role)
	}

	k.mu.Lock()
	var old any
	err := guard(func() error {
		if k.closed {
			return errStoreClosed
		}
		switch role {
		case RoleClient:
			ck, err := k.scheme.ParseClientKey(data)
			if err != nil {
				return err
			}
			old, k.client = k.client, ck
		case RoleServer:
			sk, err := k.scheme.ParseServerKey(data)
			if err != nil {
				return err
			}
			old, k.server = k.server, sk
		case RolePublic:
			pk, err := k.scheme.ParsePublicKey(data)
			if err != nil {
				return err
			}
			old, k.public = k.public, pk
		default:
			return fmt.Errorf("%w: unknown key role %d", ErrArgument, role)
		}
		return nil
	})
	k.mu.Unlock()

	if err != nil {
		err = remapError(err, ErrDecode)
		k.log.Warn(ctx, "key load failed", "role", role.String(), "error", err)
		return fmt.Errorf("load %s: %w", role, err)
	}
	release(old)
	k.log.Info(ctx, "key loaded", "role", role.String(), logging.Size("bytes", data), logging.Redacted("key"))
	return nil
}

// Has reports whether a key of the given role is resident.
func (k *KeyStore) Has(role Role) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	switch role {
	case RoleClient:
		return k.client != nil
	case RoleServer:
		return k.server != nil
	case RolePublic:
		return k.public != nil
	}
	return false
}

// PublicKey serializes the resident public key.
func (k *KeyStore) PublicKey() ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return nil, errStoreClosed
	}
	if k.public == nil {
		return nil, fmt.Errorf("%w: public key not set", ErrNoKeyLoaded)
	}
	var out []byte
	err := guard(func() (err error) {
		out, err = k.public.Serialize()
		return err
	})
	if err != nil {
		return nil, remapError(err, ErrInternalEvaluation)
	}
	return out, nil
}

// withServer runs fn with the read lock held and the resident server key.
func (k *KeyStore) withServer(fn func(ServerKey) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return errStoreClosed
	}
	if k.server == nil {
		return fmt.Errorf("%w: server key not set", ErrNoKeyLoaded)
	}
	return fn(k.server)
}

// withClient runs fn with the read lock held and the resident client key.
func (k *KeyStore) withClient(fn func(ClientKey) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return errStoreClosed
	}
	if k.client == nil {
		return fmt.Errorf("%w: client key not set", ErrNoKeyLoaded)
	}
	return fn(k.client)
}

type encryptor interface {
	Encrypt(v uint64, t UintType) ([]byte, error)
	EncryptCompressed(v uint64, t UintType) ([]byte, error)
}

// withEncryptor prefers the client key and falls back to the public key.
func (k *KeyStore) withEncryptor(fn func(encryptor) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	switch {
	case k.closed:
		return errStoreClosed
	case k.client != nil:
		return fn(k.client)
	case k.public != nil:
		return fn(k.public)
	}
	return fmt.Errorf("%w: neither client key nor public key set", ErrNoKeyLoaded)
}

// GenerateFullKeys generates a fresh key set and writes the client, server and
// public keys to the given paths, creating parent directories as needed. The
// resident keys are not changed. Either all three files are written or none of
// them is left behind.
func (k *KeyStore) GenerateFullKeys(clientPath, serverPath, publicPath string) error {
	ctx := context.Background()
	for _, p := range []string{clientPath, serverPath, publicPath} {
		if p == "" {
			return fmt.Errorf("%w: key path must not be empty", ErrArgument)
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return errStoreClosed
	}

	var km KeyMaterial
	err := guard(func() (err error) {
		km, err = k.scheme.GenerateKeys()
		return err
	})
	if err != nil {
		err = remapError(err, ErrInternalEvaluation)
		k.log.Warn(ctx, "key generation failed", "error", err)
		return fmt.Errorf("generate keys: %w", err)
	}
	defer ZeroizeBytes(km.Client)

	files := []struct {
		path string
		data []byte
	}{
		{clientPath, km.Client},
		{serverPath, km.Server},
		{publicPath, km.Public},
	}
	// Every file is staged before any target is touched, so a failed
	// generation leaves an existing key set exactly as it was.
	staged := make([]string, 0, len(files))
	discard := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}
	for _, f := range files {
		tmp, err := stageFile(f.path, f.data, k.fileMode)
		if err != nil {
			discard()
			k.log.Warn(ctx, "key generation failed", "path", f.path, "error", err)
			return fmt.Errorf("generate keys: %w", err)
		}
		staged = append(staged, tmp)
	}
	for i, f := range files {
		if err := os.Rename(staged[i], f.path); err != nil {
			staged = staged[i:]
			discard()
			err = fmt.Errorf("%w: install %s: %w", ErrIO, f.path, err)
			k.log.Warn(ctx, "key generation failed", "path", f.path, "error", err)
			return fmt.Errorf("generate keys: %w", err)
		}
	}

	k.log.Info(ctx, "key set generated",
		"client_key_path", clientPath,
		"server_key_path", serverPath,
		"public_key_path", publicPath,
	)
	return nil
}

// LoadFromFiles reads and loads every non-empty path. Loads are applied in the
// order server, client, public; a failure stops the sequence and leaves the
// keys loaded so far resident.
func (k *KeyStore) LoadFromFiles(clientPath, serverPath, publicPath string) error {
	steps := []struct {
		role Role
		path string
	}{
		{RoleServer, serverPath},
		{RoleClient, clientPath},
		{RolePublic, publicPath},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		data, err := os.ReadFile(s.path)
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", ErrIO, s.role, err)
		}
		err = k.load(s.role, data)
		if k.zeroize {
			ZeroizeBytes(data)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// stageFile writes data to a temporary sibling of path and returns its name.
// The caller renames it into place or removes it.
func stageFile(path string, data []byte, mode os.FileMode) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Chmod(mode)
	}
	if werr == nil {
		werr = tmp.Sync()
	}
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	return tmpName, nil
}

// guard runs fn and converts a panic into ErrInternalEvaluation.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Recovered(r)
		}
	}()
	return fn()
}

// reset releases every resident key and refuses all later key access.
func (k *KeyStore) reset() {
	k.mu.Lock()
	k.closed = true
	c, s, p := k.client, k.server, k.public
	k.client, k.server, k.public = nil, nil, nil
	k.mu.Unlock()
	release(c)
	release(s)
	release(p)
}
