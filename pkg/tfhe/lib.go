package tfhe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Library bundles a KeyStore and an Engine opened from a Config.
type Library struct {
	cfg    Config
	keys   *KeyStore
	engine *Engine

	mu     sync.Mutex
	closed bool
}

// Open builds the key store and engine described by cfg and loads every
// configured key file that exists. Missing files are skipped so a fresh home
// directory can be opened before keys are generated.
func Open(cfg Config) (*Library, error) {
	keys := NewKeyStore(cfg.scheme(), cfg.storeOptions()...)
	client, server, public := cfg.KeyPaths()
	err := keys.LoadFromFiles(existing(client), existing(server), existing(public))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return &Library{cfg: cfg, keys: keys, engine: NewEngine(keys)}, nil
}

// existing returns p when it names a file that can be stat'ed and "" when it
// does not exist. Other stat failures keep p so the read reports them.
func existing(p string) string {
	if p == "" {
		return ""
	}
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return p
}

// Keys returns the library's key store.
func (l *Library) Keys() *KeyStore {
	return l.keys
}

// Engine returns the library's engine.
func (l *Library) Engine() *Engine {
	return l.engine
}

// Config returns the configuration the library was opened with.
func (l *Library) Config() Config {
	return l.cfg
}

// GenerateKeys writes a fresh key set to the configured paths and loads it.
func (l *Library) GenerateKeys() error {
	if l.isClosed() {
		return ErrLibraryClosed
	}
	client, server, public := l.cfg.KeyPaths()
	if err := l.keys.GenerateFullKeys(client, server, public); err != nil {
		return err
	}
	return l.keys.LoadFromFiles(client, server, public)
}

func (l *Library) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close releases the resident keys. The method is idempotent, returning
// ErrLibraryClosed when called twice.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLibraryClosed
	}

	l.keys.reset()
	l.closed = true
	return nil
}
