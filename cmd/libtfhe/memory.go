//go:build cgo

package main

/*
#include <stdlib.h>
#include <string.h>
#include "libtfhe.h"
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/buffer"
)

var errOutOfMemory = errors.New("libtfhe: out of C memory")

// cAllocator hands out C heap memory and remembers every live block so a
// foreign destroy of an unknown or already freed pointer can be refused.
type cAllocator struct {
	mu   sync.Mutex
	live map[uintptr]int
}

func newCAllocator() *cAllocator {
	return &cAllocator{live: make(map[uintptr]int)}
}

func (a *cAllocator) Alloc(n int) ([]byte, error) {
	p := C.malloc(C.size_t(n))
	if p == nil {
		return nil, errOutOfMemory
	}
	a.mu.Lock()
	a.live[uintptr(p)] = n
	a.mu.Unlock()
	return unsafe.Slice((*byte)(p), n), nil
}

func (a *cAllocator) Free(b []byte) error {
	if cap(b) == 0 {
		return nil
	}
	return a.free(unsafe.Pointer(unsafe.SliceData(b)))
}

func (a *cAllocator) free(p unsafe.Pointer) error {
	a.mu.Lock()
	n, ok := a.live[uintptr(p)]
	delete(a.live, uintptr(p))
	a.mu.Unlock()
	if !ok {
		return buffer.ErrUnknownAllocation
	}
	C.memset(p, 0, C.size_t(n))
	C.free(p)
	return nil
}

// Live returns the number of C blocks not yet destroyed.
func (a *cAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// vector is the Go side of an UnmanagedVector.
type vector struct {
	none bool
	ptr  unsafe.Pointer
	len  int
	cap  int
}

func (v vector) c() C.UnmanagedVector {
	return C.UnmanagedVector{
		is_none: C.bool(v.none),
		ptr:     (*C.uint8_t)(v.ptr),
		len:     C.uintptr_t(v.len),
		cap:     C.uintptr_t(v.cap),
	}
}

func vectorFromC(v C.UnmanagedVector) vector {
	return vector{none: bool(v.is_none), ptr: unsafe.Pointer(v.ptr), len: int(v.len), cap: int(v.cap)}
}

// release hands o to the C caller. o must have been filled from the C
// allocator; an empty buffer crosses as a null pointer of length zero.
func release(o *buffer.Owned) vector {
	data, absent, err := o.Release()
	if err != nil || absent {
		return vector{none: true}
	}
	if cap(data) == 0 {
		return vector{}
	}
	return vector{ptr: unsafe.Pointer(unsafe.SliceData(data)), len: len(data), cap: cap(data)}
}

// destroy frees a vector previously handed out by release or newVector.
func (a *cAllocator) destroy(v vector) error {
	if v.none || v.ptr == nil {
		return nil
	}
	return a.free(v.ptr)
}

// newVector copies data into a fresh C block.
func (a *cAllocator) newVector(data []byte, absent bool) (vector, error) {
	if absent {
		return vector{none: true}, nil
	}
	o, err := buffer.FromBytesIn(a, data)
	if err != nil {
		return vector{}, err
	}
	return release(o), nil
}

func viewFromC(v C.ByteSliceView) buffer.View {
	if bool(v.is_nil) {
		return buffer.AbsentView()
	}
	if v.len == 0 || v.ptr == nil {
		return buffer.ViewOf([]byte{})
	}
	return buffer.ViewOf(unsafe.Slice((*byte)(unsafe.Pointer(v.ptr)), int(v.len)))
}

func pathView(p *C.char) buffer.View {
	if p == nil {
		return buffer.AbsentView()
	}
	return buffer.ViewOf([]byte(C.GoString(p)))
}
