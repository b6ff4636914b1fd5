package oracle

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/nacl/box"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
)

// SealVersion names the envelope scheme, matching the eth_decrypt convention.
const SealVersion = "x25519-xsalsa20-poly1305"

// Envelope is the JSON form of a sealed value. Binary fields are base64.
type Envelope struct {
	Version        string `json:"version"`
	Nonce          string `json:"nonce"`
	EphemPublicKey string `json:"ephemPublicKey"`
	Ciphertext     string `json:"ciphertext"`
}

// Seal encrypts v to userPublicKey and returns the hex-encoded JSON envelope.
// The plaintext is v as a 32-byte big-endian word.
func Seal(v uint64, userPublicKey []byte) (string, error) {
	if len(userPublicKey) != 32 {
		return "", fmt.Errorf("%w: user public key is %d bytes, want 32", tfhe.ErrArgument, len(userPublicKey))
	}
	ephemPub, ephemPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("oracle: generate ephemeral key: %w", err)
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("oracle: read nonce: %w", err)
	}

	word := uint256.NewInt(v).Bytes32()
	sealed := box.Seal(nil, word[:], &nonce, (*[32]byte)(userPublicKey), ephemPriv)

	out, err := json.Marshal(Envelope{
		Version:        SealVersion,
		Nonce:          base64.StdEncoding.EncodeToString(nonce[:]),
		EphemPublicKey: base64.StdEncoding.EncodeToString(ephemPub[:]),
		Ciphertext:     base64.StdEncoding.EncodeToString(sealed),
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// Open reverses Seal with the user's x25519 private key.
func Open(sealedHex string, userPrivateKey *[32]byte) (*uint256.Int, error) {
	raw, err := hex.DecodeString(sealedHex)
	if err != nil {
		return nil, fmt.Errorf("oracle: sealed output is not hex: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("oracle: sealed output: %w", err)
	}
	if env.Version != SealVersion {
		return nil, fmt.Errorf("oracle: unsupported envelope version %q", env.Version)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != 24 {
		return nil, fmt.Errorf("oracle: bad envelope nonce")
	}
	ephem, err := base64.StdEncoding.DecodeString(env.EphemPublicKey)
	if err != nil || len(ephem) != 32 {
		return nil, fmt.Errorf("oracle: bad ephemeral public key")
	}
	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("oracle: bad envelope ciphertext: %w", err)
	}
	plain, ok := box.Open(nil, ct, (*[24]byte)(nonce), (*[32]byte)(ephem), userPrivateKey)
	if !ok {
		return nil, fmt.Errorf("oracle: envelope does not open with this key")
	}
	return new(uint256.Int).SetBytes(plain), nil
}
