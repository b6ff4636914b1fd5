//go:build !cgo || !tfhers

package bindings

// Stub implementations used when cgo is disabled or the tfhers tag is absent.
// Every call reports errUnavailable.

func Version() string { return "" }

func Available() bool { return false }

func GenerateKeys() (client, server, public []byte, err error) {
	return nil, nil, nil, errUnavailable
}

func ParseKey(Role, []byte) (*Key, error) { return nil, errUnavailable }

func (k *Key) Serialize() ([]byte, error) { return nil, errUnavailable }

func (k *Key) Free() {}

func ParseCiphertext(int, []byte) (*Ciphertext, error) { return nil, errUnavailable }

func (c *Ciphertext) Serialize() ([]byte, error) { return nil, errUnavailable }

func (c *Ciphertext) Free() {}

func Encrypt(*Key, int, uint64) ([]byte, error) { return nil, errUnavailable }

func EncryptCompressed(*Key, int, uint64) ([]byte, error) { return nil, errUnavailable }

func Expand(int, []byte) ([]byte, error) { return nil, errUnavailable }

func Decrypt(*Key, int, []byte) (uint64, error) { return 0, errUnavailable }

func TrivialEncrypt(*Key, int, uint64) (*Ciphertext, error) { return nil, errUnavailable }

func Binary(*Key, int, *Ciphertext, *Ciphertext) (*Ciphertext, error) {
	return nil, errUnavailable
}

func Not(*Key, *Ciphertext) (*Ciphertext, error) { return nil, errUnavailable }

func Cast(*Key, *Ciphertext, int) (*Ciphertext, error) { return nil, errUnavailable }

func Select(*Key, *Ciphertext, *Ciphertext, *Ciphertext) (*Ciphertext, error) {
	return nil, errUnavailable
}
