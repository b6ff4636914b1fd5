package testscheme

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
)

const (
	version = 1

	idLen    = 16
	nonceLen = 16
	keyLen   = 32
)

var (
	magicClient     = []byte("TSCK")
	magicServer     = []byte("TSSK")
	magicPublic     = []byte("TSPK")
	magicCiphertext = []byte("TSCT")
	magicCompressed = []byte("TSCC")
)

// Scheme is the reference backend. The zero value is not usable; call New.
type Scheme struct {
	// GenerateErr, when set, is returned by GenerateKeys.
	GenerateErr error
	// PanicOn makes Binary panic for the given operation.
	PanicOn *tfhe.Op

	live atomic.Int64
}

var _ tfhe.Scheme = (*Scheme)(nil)

// New returns a reference scheme.
func New() *Scheme {
	return &Scheme{}
}

// Name implements tfhe.Scheme.
func (s *Scheme) Name() string { return "testscheme" }

// Live reports how many parsed keys have not been released yet.
func (s *Scheme) Live() int64 { return s.live.Load() }

// GenerateKeys implements tfhe.Scheme. The three keys share a random key-set
// identifier; ciphertexts produced under one set do not decode under another.
func (s *Scheme) GenerateKeys() (tfhe.KeyMaterial, error) {
	if s.GenerateErr != nil {
		return tfhe.KeyMaterial{}, s.GenerateErr
	}
	id := make([]byte, idLen)
	secret := make([]byte, keyLen)
	if _, err := rand.Read(id); err != nil {
		return tfhe.KeyMaterial{}, err
	}
	if _, err := rand.Read(secret); err != nil {
		return tfhe.KeyMaterial{}, err
	}
	return tfhe.KeyMaterial{
		Client: concat(magicClient, []byte{version}, id, secret),
		Server: concat(magicServer, []byte{version}, id),
		Public: concat(magicPublic, []byte{version}, id),
	}, nil
}

// ParseClientKey implements tfhe.Scheme.
func (s *Scheme) ParseClientKey(data []byte) (tfhe.ClientKey, error) {
	id, rest, err := parseKey(magicClient, data, keyLen)
	if err != nil {
		return nil, err
	}
	return s.track(&key{s: s, magic: magicClient, id: id, secret: rest}), nil
}

// ParseServerKey implements tfhe.Scheme.
func (s *Scheme) ParseServerKey(data []byte) (tfhe.ServerKey, error) {
	id, _, err := parseKey(magicServer, data, 0)
	if err != nil {
		return nil, err
	}
	return s.track(&key{s: s, magic: magicServer, id: id}), nil
}

// ParsePublicKey implements tfhe.Scheme.
func (s *Scheme) ParsePublicKey(data []byte) (tfhe.PublicKey, error) {
	id, _, err := parseKey(magicPublic, data, 0)
	if err != nil {
		return nil, err
	}
	return s.track(&key{s: s, magic: magicPublic, id: id}), nil
}

// Expand implements tfhe.Scheme.
func (s *Scheme) Expand(compressed []byte, t tfhe.UintType) ([]byte, error) {
	id, v, err := parseCompressed(compressed, t)
	if err != nil {
		return nil, err
	}
	return encodeCiphertext(id, v, t)
}

func (s *Scheme) track(k *key) *key {
	s.live.Add(1)
	return k
}

func parseKey(magic, data []byte, extra int) (id, rest []byte, err error) {
	want := len(magic) + 1 + idLen + extra
	if len(data) != want {
		return nil, nil, fmt.Errorf("%w: key is %d bytes, want %d", tfhe.ErrDecode, len(data), want)
	}
	if !bytes.HasPrefix(data, magic) {
		return nil, nil, fmt.Errorf("%w: bad key magic", tfhe.ErrDecode)
	}
	if data[len(magic)] != version {
		return nil, nil, fmt.Errorf("%w: unsupported key version %d", tfhe.ErrDecode, data[len(magic)])
	}
	off := len(magic) + 1
	id = bytes.Clone(data[off : off+idLen])
	rest = bytes.Clone(data[off+idLen:])
	return id, rest, nil
}

func width(t tfhe.UintType) int {
	return int(t.Bits() / 8)
}

// Expanded layout: magic | version | width tag | key-set id | nonce | value.
func encodeCiphertext(id []byte, v uint64, t tfhe.UintType) ([]byte, error) {
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return concat(magicCiphertext, []byte{version, byte(t)}, id, nonce, putValue(v, t)), nil
}

func parseCiphertext(ct []byte, t tfhe.UintType) (id []byte, v uint64, err error) {
	hdr := len(magicCiphertext) + 2
	if len(ct) < hdr || !bytes.HasPrefix(ct, magicCiphertext) {
		return nil, 0, fmt.Errorf("%w: not a ciphertext", tfhe.ErrDecode)
	}
	if ct[hdr-2] != version {
		return nil, 0, fmt.Errorf("%w: unsupported ciphertext version %d", tfhe.ErrDecode, ct[hdr-2])
	}
	if tag := tfhe.UintType(ct[hdr-1]); tag != t {
		return nil, 0, fmt.Errorf("%w: ciphertext width tag %d, want %s", tfhe.ErrDecode, uint8(tag), t)
	}
	if want := hdr + idLen + nonceLen + width(t); len(ct) != want {
		return nil, 0, fmt.Errorf("%w: ciphertext is %d bytes, want %d", tfhe.ErrDecode, len(ct), want)
	}
	id = ct[hdr : hdr+idLen]
	return id, getValue(ct[hdr+idLen+nonceLen:]), nil
}

// Compressed layout: magic | version | width tag | key-set id | value.
func encodeCompressed(id []byte, v uint64, t tfhe.UintType) []byte {
	return concat(magicCompressed, []byte{version, byte(t)}, id, putValue(v, t))
}

func parseCompressed(ct []byte, t tfhe.UintType) (id []byte, v uint64, err error) {
	hdr := len(magicCompressed) + 2
	if len(ct) < hdr || !bytes.HasPrefix(ct, magicCompressed) {
		return nil, 0, fmt.Errorf("%w: not a compressed ciphertext", tfhe.ErrDecode)
	}
	if ct[hdr-2] != version {
		return nil, 0, fmt.Errorf("%w: unsupported ciphertext version %d", tfhe.ErrDecode, ct[hdr-2])
	}
	if tag := tfhe.UintType(ct[hdr-1]); tag != t {
		return nil, 0, fmt.Errorf("%w: compressed width tag %d, want %s", tfhe.ErrDecode, uint8(tag), t)
	}
	if want := hdr + idLen + width(t); len(ct) != want {
		return nil, 0, fmt.Errorf("%w: compressed ciphertext is %d bytes, want %d", tfhe.ErrDecode, len(ct), want)
	}
	return ct[hdr : hdr+idLen], getValue(ct[hdr+idLen:]), nil
}

func putValue(v uint64, t tfhe.UintType) []byte {
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], v&t.Max())
	return full[8-width(t):]
}

func getValue(b []byte) uint64 {
	var full [8]byte
	copy(full[8-len(b):], b)
	return binary.BigEndian.Uint64(full[:])
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}
