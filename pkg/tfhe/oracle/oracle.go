// Package oracle records and serves facts about ciphertexts that a host chain
// needs without holding the client key itself: whether a required condition
// decrypted to nonzero, the decrypted value, and that value sealed to a user's
// x25519 public key.
//
// Sealed values are always the 32-byte big-endian EVM word of the plaintext,
// so a uint8 seals to the same length as a uint32. Consumers that expect the
// minimal big-endian encoding must strip leading zero bytes after opening.
package oracle

import (
	"encoding/hex"
	"errors"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
)

var (
	// ErrClosed is returned by every call on a closed oracle.
	ErrClosed = errors.New("oracle: closed")
	// ErrBadSignature reports a stored record whose signature does not verify.
	ErrBadSignature = errors.New("oracle: record signature does not verify")
	// ErrCorruptRecord reports a stored record that does not parse.
	ErrCorruptRecord = errors.New("oracle: corrupt record")
)

// Oracle answers require and decrypt queries about ciphertexts.
type Oracle interface {
	// GetRequire returns the recorded require outcome of ct. A ciphertext
	// with no record reads as false.
	GetRequire(ct *tfhe.Ciphertext) (bool, error)
	// PutRequire records whether ct decrypted to a nonzero value.
	PutRequire(ct *tfhe.Ciphertext, notZero bool) error
	// Decrypt returns the decimal plaintext of ct.
	Decrypt(ct *tfhe.Ciphertext) (string, error)
	// SealOutput returns the plaintext of ct sealed to userPublicKey, as a
	// hex-encoded JSON envelope.
	SealOutput(ct *tfhe.Ciphertext, userPublicKey []byte) (string, error)
	Close() error
}

func requireKey(ct *tfhe.Ciphertext) string {
	return ct.HashHex()
}

func decryptKey(ct *tfhe.Ciphertext) string {
	return "decrypt" + ct.HashHex()
}

// recordDigest is the message a require record signature covers.
func recordDigest(ct *tfhe.Ciphertext, notZero bool) [32]byte {
	var b byte
	if notZero {
		b = 1
	}
	return tfhe.Keccak256(ct.Serialization, []byte{b})
}

type requireRecord struct {
	Value     bool   `json:"value"`
	Signature string `json:"signature,omitempty"`
}

func (r requireRecord) signature() ([]byte, error) {
	return hex.DecodeString(r.Signature)
}

type decryptRecord struct {
	Value string `json:"value"`
}
