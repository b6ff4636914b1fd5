//go:build cgo && tfhers

package bindings

/*
#cgo CFLAGS: -O3 -I${SRCDIR}/../../lib
#cgo LDFLAGS: -L${SRCDIR}/../../lib -ltfhe -lm -ldl
#include <stdlib.h>
#include "shim.h"
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Version reports the tfhe-rs line the shim was written against.
func Version() string { return "tfhe-rs c-api" }

// Available reports whether native calls can succeed.
func Available() bool { return true }

func status(rc C.int, what string) error {
	switch rc {
	case C.TFHE_GO_OK:
		return nil
	case C.TFHE_GO_BAD_ARG:
		return fmt.Errorf("%w: %s", ErrBadArgument, what)
	default:
		return fmt.Errorf("%w: %s (status %d)", ErrNative, what, int(rc))
	}
}

// takeBuf copies a native buffer into Go memory, then wipes and frees it.
func takeBuf(b *C.tfhe_go_buf) []byte {
	defer C.tfhe_go_buf_free(b)
	if b.ptr == nil || b.len == 0 {
		return []byte{}
	}
	return C.GoBytes(unsafe.Pointer(b.ptr), C.int(b.len))
}

// cBytes returns a pointer to data that is valid for the duration of a
// synchronous cgo call.
func cBytes(data []byte) (*C.uint8_t, C.size_t) {
	if len(data) == 0 {
		return nil, 0
	}
	return (*C.uint8_t)(unsafe.Pointer(&data[0])), C.size_t(len(data))
}

// GenerateKeys runs tfhe-rs key generation with the default configuration and
// returns the serialized client, server and public keys.
func GenerateKeys() (client, server, public []byte, err error) {
	var cks, sks, pks C.tfhe_go_buf
	rc := C.tfhe_go_generate(&cks, &sks, &pks)
	client, server, public = takeBuf(&cks), takeBuf(&sks), takeBuf(&pks)
	if err := status(rc, "generate keys"); err != nil {
		return nil, nil, nil, err
	}
	return client, server, public, nil
}

// ParseKey deserializes a key of the given role.
func ParseKey(role Role, data []byte) (*Key, error) {
	p, n := cBytes(data)
	var out unsafe.Pointer
	rc := C.tfhe_go_key_deserialize(C.int(role), p, n, &out)
	runtime.KeepAlive(data)
	if err := status(rc, "deserialize key"); err != nil {
		return nil, err
	}
	k := &Key{role: role, ptr: out}
	runtime.SetFinalizer(k, (*Key).Free)
	return k, nil
}

// Serialize returns the key's serialized form.
func (k *Key) Serialize() ([]byte, error) {
	var b C.tfhe_go_buf
	rc := C.tfhe_go_key_serialize(C.int(k.role), k.ptr, &b)
	runtime.KeepAlive(k)
	if err := status(rc, "serialize key"); err != nil {
		C.tfhe_go_buf_free(&b)
		return nil, err
	}
	return takeBuf(&b), nil
}

// Free releases the native key. It is safe to call more than once.
func (k *Key) Free() {
	if k == nil || k.ptr == nil {
		return
	}
	C.tfhe_go_key_free(C.int(k.role), k.ptr)
	k.ptr = nil
	runtime.SetFinalizer(k, nil)
}

func newCiphertext(width int, p unsafe.Pointer) *Ciphertext {
	c := &Ciphertext{width: width, ptr: p}
	runtime.SetFinalizer(c, (*Ciphertext).Free)
	return c
}

// ParseCiphertext deserializes an expanded ciphertext of the given width.
func ParseCiphertext(width int, data []byte) (*Ciphertext, error) {
	p, n := cBytes(data)
	var out unsafe.Pointer
	rc := C.tfhe_go_ct_deserialize(C.int(width), p, n, &out)
	runtime.KeepAlive(data)
	if err := status(rc, "deserialize ciphertext"); err != nil {
		return nil, err
	}
	return newCiphertext(width, out), nil
}

// Serialize returns the ciphertext's serialized form.
func (c *Ciphertext) Serialize() ([]byte, error) {
	var b C.tfhe_go_buf
	rc := C.tfhe_go_ct_serialize(C.int(c.width), c.ptr, &b)
	runtime.KeepAlive(c)
	if err := status(rc, "serialize ciphertext"); err != nil {
		C.tfhe_go_buf_free(&b)
		return nil, err
	}
	return takeBuf(&b), nil
}

// Free releases the native ciphertext. It is safe to call more than once.
func (c *Ciphertext) Free() {
	if c == nil || c.ptr == nil {
		return
	}
	C.tfhe_go_ct_free(C.int(c.width), c.ptr)
	c.ptr = nil
	runtime.SetFinalizer(c, nil)
}

// Encrypt encrypts v with a client or public key and returns the serialized
// expanded ciphertext.
func Encrypt(k *Key, width int, v uint64) ([]byte, error) {
	var out unsafe.Pointer
	rc := C.tfhe_go_encrypt(C.int(k.role), k.ptr, C.int(width), C.uint64_t(v), &out)
	runtime.KeepAlive(k)
	if err := status(rc, "encrypt"); err != nil {
		return nil, err
	}
	ct := newCiphertext(width, out)
	defer ct.Free()
	return ct.Serialize()
}

// EncryptCompressed encrypts v with a client key into a serialized compressed
// ciphertext.
func EncryptCompressed(k *Key, width int, v uint64) ([]byte, error) {
	if k.role != RoleClient {
		return nil, fmt.Errorf("%w: compressed encryption needs a client key", ErrBadArgument)
	}
	var b C.tfhe_go_buf
	rc := C.tfhe_go_encrypt_compressed(k.ptr, C.int(width), C.uint64_t(v), &b)
	runtime.KeepAlive(k)
	if err := status(rc, "encrypt compressed"); err != nil {
		C.tfhe_go_buf_free(&b)
		return nil, err
	}
	return takeBuf(&b), nil
}

// Expand decompresses a serialized compressed ciphertext and returns the
// serialized expanded form.
func Expand(width int, compressed []byte) ([]byte, error) {
	p, n := cBytes(compressed)
	var b C.tfhe_go_buf
	rc := C.tfhe_go_expand(C.int(width), p, n, &b)
	runtime.KeepAlive(compressed)
	if err := status(rc, "expand"); err != nil {
		C.tfhe_go_buf_free(&b)
		return nil, err
	}
	return takeBuf(&b), nil
}

// Decrypt decrypts a serialized expanded ciphertext with a client key.
func Decrypt(k *Key, width int, data []byte) (uint64, error) {
	ct, err := ParseCiphertext(width, data)
	if err != nil {
		return 0, err
	}
	defer ct.Free()
	var out C.uint64_t
	rc := C.tfhe_go_decrypt(k.ptr, C.int(width), ct.ptr, &out)
	runtime.KeepAlive(k)
	if err := status(rc, "decrypt"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// The server key in tfhe-rs is thread local. Every evaluation pins the
// goroutine to its OS thread and installs sk before the call.
func withServerKey(sk *Key, fn func() C.int) C.int {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if rc := C.tfhe_go_set_server_key(sk.ptr); rc != 0 {
		return rc
	}
	rc := fn()
	runtime.KeepAlive(sk)
	return rc
}

// TrivialEncrypt encodes v without encryption under the server key.
func TrivialEncrypt(sk *Key, width int, v uint64) (*Ciphertext, error) {
	var out unsafe.Pointer
	rc := withServerKey(sk, func() C.int {
		return C.tfhe_go_trivial(C.int(width), C.uint64_t(v), &out)
	})
	if err := status(rc, "trivial encrypt"); err != nil {
		return nil, err
	}
	return newCiphertext(width, out), nil
}

// Binary evaluates op over a and b, which share a width.
func Binary(sk *Key, op int, a, b *Ciphertext) (*Ciphertext, error) {
	var out unsafe.Pointer
	rc := withServerKey(sk, func() C.int {
		return C.tfhe_go_binary(C.int(a.width), C.int(op), a.ptr, b.ptr, &out)
	})
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
	if err := status(rc, "binary op"); err != nil {
		return nil, err
	}
	return newCiphertext(a.width, out), nil
}

// Not evaluates bitwise negation.
func Not(sk *Key, a *Ciphertext) (*Ciphertext, error) {
	var out unsafe.Pointer
	rc := withServerKey(sk, func() C.int {
		return C.tfhe_go_not(C.int(a.width), a.ptr, &out)
	})
	runtime.KeepAlive(a)
	if err := status(rc, "not"); err != nil {
		return nil, err
	}
	return newCiphertext(a.width, out), nil
}

// Cast re-encodes a at width to. Same-width casts round-trip through the
// serialized form.
func Cast(sk *Key, a *Ciphertext, to int) (*Ciphertext, error) {
	if a.width == to {
		data, err := a.Serialize()
		if err != nil {
			return nil, err
		}
		return ParseCiphertext(to, data)
	}
	var out unsafe.Pointer
	rc := withServerKey(sk, func() C.int {
		return C.tfhe_go_cast(C.int(a.width), a.ptr, C.int(to), &out)
	})
	runtime.KeepAlive(a)
	if err := status(rc, "cast"); err != nil {
		return nil, err
	}
	return newCiphertext(to, out), nil
}

// Select evaluates c != 0 ? a : b.
func Select(sk *Key, c, a, b *Ciphertext) (*Ciphertext, error) {
	var out unsafe.Pointer
	rc := withServerKey(sk, func() C.int {
		return C.tfhe_go_select(C.int(a.width), c.ptr, a.ptr, b.ptr, &out)
	})
	runtime.KeepAlive(c)
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
	if err := status(rc, "select"); err != nil {
		return nil, err
	}
	return newCiphertext(a.width, out), nil
}
