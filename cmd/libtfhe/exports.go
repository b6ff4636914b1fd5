//go:build cgo

package main

/*
#include <stdlib.h>
#include "libtfhe.h"
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/abi"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/buffer"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
)

var (
	initOnce   sync.Once
	surface    *abi.Surface
	cheap      = newCAllocator()
	log        = logging.New(nil).With("component", "libtfhe")
	versionStr *C.char
)

func lib() *abi.Surface {
	initOnce.Do(func() {
		scheme := backend()
		if insecureBackend {
			log.Error(context.Background(), "built with the insecure test scheme; ciphertexts carry plaintext")
		}
		keys := tfhe.NewKeyStore(scheme, tfhe.WithLogger(log))
		surface = abi.New(tfhe.NewEngine(keys), cheap)
		versionStr = C.CString(version())
	})
	return surface
}

// withErr runs fn with a fresh error slot and hands a populated slot to the
// caller through errMsg. On success *errMsg is not written.
func withErr(errMsg *C.UnmanagedVector, fn func(slot *buffer.Owned)) {
	slot := buffer.Absent()
	fn(slot)
	if slot.IsAbsent() {
		return
	}
	if errMsg == nil {
		_ = buffer.Destroy(slot)
		return
	}
	*errMsg = release(slot).c()
}

func owned(errMsg *C.UnmanagedVector, fn func(slot *buffer.Owned) *buffer.Owned) C.UnmanagedVector {
	var out *buffer.Owned
	withErr(errMsg, func(slot *buffer.Owned) { out = fn(slot) })
	return release(out).c()
}

//export tfhe_generate_full_keys
func tfhe_generate_full_keys(cks, sks, pks *C.char) C.bool {
	slot := buffer.Absent()
	ok := lib().GenerateFullKeys(pathView(cks), pathView(sks), pathView(pks), slot)
	if !ok {
		log.Warn(context.Background(), "generate_full_keys failed", "error", string(slot.AsSlice()))
	}
	_ = buffer.Destroy(slot)
	return C.bool(ok)
}

//export tfhe_load_server_key
func tfhe_load_server_key(key C.ByteSliceView, errMsg *C.UnmanagedVector) {
	withErr(errMsg, func(slot *buffer.Owned) { lib().LoadServerKey(viewFromC(key), slot) })
}

//export tfhe_load_client_key
func tfhe_load_client_key(key C.ByteSliceView, errMsg *C.UnmanagedVector) {
	withErr(errMsg, func(slot *buffer.Owned) { lib().LoadClientKey(viewFromC(key), slot) })
}

//export tfhe_load_public_key
func tfhe_load_public_key(key C.ByteSliceView, errMsg *C.UnmanagedVector) {
	withErr(errMsg, func(slot *buffer.Owned) { lib().LoadPublicKey(viewFromC(key), slot) })
}

//export tfhe_get_public_key
func tfhe_get_public_key(errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned { return lib().GetPublicKey(slot) })
}

//export tfhe_encrypt
func tfhe_encrypt(msg C.uint64_t, intType C.int32_t, errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned {
		return lib().Encrypt(uint64(msg), tag(intType), slot)
	})
}

//export tfhe_encrypt_compressed
func tfhe_encrypt_compressed(msg C.uint64_t, intType C.int32_t, errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned {
		return lib().EncryptCompressed(uint64(msg), tag(intType), slot)
	})
}

//export tfhe_trivial_encrypt
func tfhe_trivial_encrypt(msg C.uint64_t, intType C.int32_t, errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned {
		return lib().TrivialEncrypt(uint64(msg), tag(intType), slot)
	})
}

// tfhe_decrypt returns UINT64_MAX on failure.
//
//export tfhe_decrypt
func tfhe_decrypt(ct C.ByteSliceView, intType C.int32_t, errMsg *C.UnmanagedVector) C.uint64_t {
	v := abi.DecryptFailed
	withErr(errMsg, func(slot *buffer.Owned) { v = lib().Decrypt(viewFromC(ct), tag(intType), slot) })
	return C.uint64_t(v)
}

//export tfhe_expand_compressed
func tfhe_expand_compressed(ct C.ByteSliceView, intType C.int32_t, errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned {
		return lib().ExpandCompressed(viewFromC(ct), tag(intType), slot)
	})
}

//export tfhe_math_operation
func tfhe_math_operation(lhs, rhs C.ByteSliceView, op, intType C.int32_t, errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned {
		return lib().MathOperation(viewFromC(lhs), viewFromC(rhs), tag(op), tag(intType), slot)
	})
}

//export tfhe_unary_math_operation
func tfhe_unary_math_operation(ct C.ByteSliceView, op, intType C.int32_t, errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned {
		return lib().UnaryMathOperation(viewFromC(ct), tag(op), tag(intType), slot)
	})
}

//export tfhe_cast_operation
func tfhe_cast_operation(ct C.ByteSliceView, fromType, toType C.int32_t, errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned {
		return lib().CastOperation(viewFromC(ct), tag(fromType), tag(toType), slot)
	})
}

//export tfhe_cmux
func tfhe_cmux(control, ifTrue, ifFalse C.ByteSliceView, intType C.int32_t, errMsg *C.UnmanagedVector) C.UnmanagedVector {
	return owned(errMsg, func(slot *buffer.Owned) *buffer.Owned {
		return lib().Cmux(viewFromC(control), viewFromC(ifTrue), viewFromC(ifFalse), tag(intType), slot)
	})
}

//export tfhe_new_unmanaged_vector
func tfhe_new_unmanaged_vector(isNil C.bool, ptr *C.uint8_t, length C.uintptr_t) C.UnmanagedVector {
	var data []byte
	if !bool(isNil) {
		data = []byte{}
		if ptr != nil && length > 0 {
			data = unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(length))
		}
	}
	v, err := cheap.newVector(data, bool(isNil))
	if err != nil {
		log.Error(context.Background(), "new_unmanaged_vector failed", "error", err)
		return vector{none: true}.c()
	}
	return v.c()
}

//export tfhe_destroy_unmanaged_vector
func tfhe_destroy_unmanaged_vector(v C.UnmanagedVector) {
	if err := cheap.destroy(vectorFromC(v)); err != nil {
		log.Warn(context.Background(), "destroy_unmanaged_vector refused", "error", err)
	}
}

// tfhe_version returns a static string owned by the library.
//
//export tfhe_version
func tfhe_version() *C.char {
	lib()
	return versionStr
}

// tag narrows a C enum value to a wire tag. Out-of-range values map to 0xff,
// which no tag uses.
func tag(v C.int32_t) uint8 {
	if v < 0 || v > 0xfe {
		return 0xff
	}
	return uint8(v)
}
