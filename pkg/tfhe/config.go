package tfhe

import (
	"path/filepath"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
)

// Default key file locations relative to Config.HomeDir.
const (
	DefaultClientKeyPath = "keys/tfhe/cks"
	DefaultServerKeyPath = "keys/tfhe/sks"
	DefaultPublicKeyPath = "keys/tfhe/pks"
)

// Config expresses the knobs required to open a Library.
type Config struct {
	// HomeDir anchors relative key paths. Leaving it empty resolves them
	// against the working directory.
	HomeDir string

	// Key file paths. An empty path means the role is not loaded on Open.
	ClientKeyPath string
	ServerKeyPath string
	PublicKeyPath string

	// Scheme selects the backend. nil selects the native tfhe-rs scheme.
	Scheme Scheme

	// Logger receives KeyStore and Engine logs. nil binds slog.Default().
	Logger logging.Logger

	// EnableZeroization wipes key bytes read from disk once they are parsed.
	EnableZeroization bool
}

// DefaultConfig returns a Config that keeps the three key files under home.
func DefaultConfig(home string) Config {
	return Config{
		HomeDir:       home,
		ClientKeyPath: DefaultClientKeyPath,
		ServerKeyPath: DefaultServerKeyPath,
		PublicKeyPath: DefaultPublicKeyPath,
	}
}

// KeyPaths returns the client, server and public key paths resolved against
// HomeDir. Empty paths stay empty.
func (c Config) KeyPaths() (client, server, public string) {
	return c.resolve(c.ClientKeyPath), c.resolve(c.ServerKeyPath), c.resolve(c.PublicKeyPath)
}

func (c Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.HomeDir == "" {
		return p
	}
	return filepath.Join(c.HomeDir, p)
}

func (c Config) scheme() Scheme {
	if c.Scheme != nil {
		return c.Scheme
	}
	return NativeScheme()
}

func (c Config) storeOptions() []Option {
	opts := []Option{WithZeroization(c.EnableZeroization)}
	if c.Logger != nil {
		opts = append(opts, WithLogger(c.Logger))
	}
	return opts
}
