package oracle

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Signer signs require records with a secp256k1 key.
type Signer struct {
	priv *btcec.PrivateKey
}

// GenerateSigner returns a Signer over a fresh random key.
func GenerateSigner() (*Signer, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("oracle: generate signing key: %w", err)
	}
	return &Signer{priv: priv}, nil
}

// SignerFromBytes loads a 32-byte secp256k1 private scalar.
func SignerFromBytes(b []byte) (*Signer, error) {
	if len(b) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("oracle: signing key is %d bytes, want %d", len(b), btcec.PrivKeyBytesLen)
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	return &Signer{priv: priv}, nil
}

// Bytes returns the private scalar.
func (s *Signer) Bytes() []byte {
	return s.priv.Serialize()
}

// Sign returns the DER-encoded ECDSA signature of digest.
func (s *Signer) Sign(digest [32]byte) []byte {
	return btcecdsa.Sign(s.priv, digest[:]).Serialize()
}

// Verifier returns the Verifier for the signer's public key.
func (s *Signer) Verifier() *Verifier {
	return &Verifier{pub: s.priv.PubKey()}
}

// Verifier checks require record signatures.
type Verifier struct {
	pub *btcec.PublicKey
}

// VerifierFromBytes parses a compressed or uncompressed secp256k1 public key.
func VerifierFromBytes(b []byte) (*Verifier, error) {
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("oracle: parse verifying key: %w", err)
	}
	return &Verifier{pub: pub}, nil
}

// Bytes returns the compressed public key.
func (v *Verifier) Bytes() []byte {
	return v.pub.SerializeCompressed()
}

// Verify reports whether sig is a valid DER signature of digest.
func (v *Verifier) Verify(digest [32]byte, sig []byte) bool {
	parsed, err := btcecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(digest[:], v.pub)
}
