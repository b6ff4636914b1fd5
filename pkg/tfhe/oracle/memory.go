package oracle

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
)

// MemoryOracle keeps records in process memory and decrypts with the client
// key resident in its engine.
type MemoryOracle struct {
	engine   *tfhe.Engine
	signer   *Signer
	verifier *Verifier
	log      logging.Logger

	mu     sync.RWMutex
	db     map[string][]byte
	closed bool
}

var _ Oracle = (*MemoryOracle)(nil)

// Option configures a MemoryOracle.
type Option func(*MemoryOracle)

// WithSigner signs every require record written by PutRequire.
func WithSigner(s *Signer) Option {
	return func(o *MemoryOracle) { o.signer = s }
}

// WithVerifier makes GetRequire reject records that are unsigned or whose
// signature does not verify.
func WithVerifier(v *Verifier) Option {
	return func(o *MemoryOracle) { o.verifier = v }
}

// WithLogger routes oracle logs to l.
func WithLogger(l logging.Logger) Option {
	return func(o *MemoryOracle) {
		if l != nil {
			o.log = l
		}
	}
}

// NewMemoryOracle returns an empty oracle over engine.
func NewMemoryOracle(engine *tfhe.Engine, opts ...Option) *MemoryOracle {
	o := &MemoryOracle{engine: engine, log: logging.New(nil), db: make(map[string][]byte)}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With("component", "oracle")
	return o
}

func (o *MemoryOracle) checkOpen() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return ErrClosed
	}
	return nil
}

func (o *MemoryOracle) get(key string) ([]byte, bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return nil, false, ErrClosed
	}
	v, ok := o.db[key]
	return v, ok, nil
}

func (o *MemoryOracle) put(key string, v []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	o.db[key] = v
	return nil
}

// GetRequire implements Oracle.
func (o *MemoryOracle) GetRequire(ct *tfhe.Ciphertext) (bool, error) {
	if ct == nil {
		return false, fmt.Errorf("%w: nil ciphertext", tfhe.ErrArgument)
	}
	data, ok, err := o.get(requireKey(ct))
	if err != nil || !ok {
		return false, err
	}
	var rec requireRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return false, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	if o.verifier != nil {
		sig, err := rec.signature()
		if err != nil || !o.verifier.Verify(recordDigest(ct, rec.Value), sig) {
			o.log.Warn(context.Background(), "require record rejected", "hash", ct.HashHex())
			return false, ErrBadSignature
		}
	}
	return rec.Value, nil
}

// PutRequire implements Oracle.
func (o *MemoryOracle) PutRequire(ct *tfhe.Ciphertext, notZero bool) error {
	if ct == nil {
		return fmt.Errorf("%w: nil ciphertext", tfhe.ErrArgument)
	}
	rec := requireRecord{Value: notZero}
	if o.signer != nil {
		rec.Signature = hex.EncodeToString(o.signer.Sign(recordDigest(ct, notZero)))
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return o.put(requireKey(ct), data)
}

// Decrypt implements Oracle. Results are cached by ciphertext hash.
func (o *MemoryOracle) Decrypt(ct *tfhe.Ciphertext) (string, error) {
	if ct == nil {
		return "", fmt.Errorf("%w: nil ciphertext", tfhe.ErrArgument)
	}
	if data, ok, err := o.get(decryptKey(ct)); err != nil {
		return "", err
	} else if ok {
		var rec decryptRecord
		if err := json.Unmarshal(data, &rec); err == nil {
			return rec.Value, nil
		}
	}

	v, err := o.engine.DecryptCiphertext(ct)
	if err != nil {
		return "", err
	}
	s := strconv.FormatUint(v, 10)
	data, err := json.Marshal(decryptRecord{Value: s})
	if err != nil {
		return "", err
	}
	if err := o.put(decryptKey(ct), data); err != nil {
		return "", err
	}
	o.log.Debug(context.Background(), "decrypt cached", "hash", ct.HashHex(), "type", ct.Type.String())
	return s, nil
}

// SealOutput implements Oracle.
func (o *MemoryOracle) SealOutput(ct *tfhe.Ciphertext, userPublicKey []byte) (string, error) {
	if ct == nil {
		return "", fmt.Errorf("%w: nil ciphertext", tfhe.ErrArgument)
	}
	if err := o.checkOpen(); err != nil {
		return "", err
	}
	v, err := o.engine.DecryptCiphertext(ct)
	if err != nil {
		return "", err
	}
	return Seal(v, userPublicKey)
}

// Close drops every record. Further calls return ErrClosed.
func (o *MemoryOracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	o.closed = true
	o.db = nil
	return nil
}
