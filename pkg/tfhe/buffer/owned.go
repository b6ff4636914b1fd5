package buffer

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
)

var (
	// ErrDoubleDestroy marks a second Destroy of the same Owned buffer. It is a
	// programming error on the caller's side.
	ErrDoubleDestroy = errors.New("buffer: owned buffer destroyed twice")

	// ErrReleased marks use of an Owned buffer whose storage was handed to a
	// foreign owner.
	ErrReleased = errors.New("buffer: owned buffer released to foreign owner")
)

const (
	stateLive uint32 = iota
	stateDestroyed
	stateReleased
)

// Owned is a single-owner byte buffer. Use a pointer; the zero value is not
// meaningful.
type Owned struct {
	data   []byte
	absent bool
	alloc  Allocator
	state  atomic.Uint32
}

// FromBytes copies data into a new Go-heap buffer. A nil data yields a present,
// empty buffer; use Absent for the absent state.
func FromBytes(data []byte) *Owned {
	o, _ := FromBytesIn(Heap, data)
	return o
}

// FromBytesIn copies data into storage obtained from a.
func FromBytesIn(a Allocator, data []byte) (*Owned, error) {
	if a == nil {
		a = Heap
	}
	o := &Owned{alloc: a}
	if len(data) == 0 {
		o.data = []byte{}
		return o, nil
	}
	b, err := a.Alloc(len(data))
	if err != nil {
		return nil, fmt.Errorf("buffer: allocate %d bytes: %w", len(data), err)
	}
	copy(b, data)
	o.data = b[:len(data)]
	return o, nil
}

// Empty returns a present buffer of length zero.
func Empty() *Owned {
	return &Owned{data: []byte{}, alloc: Heap}
}

// Absent returns a buffer in the distinguished absent state.
func Absent() *Owned {
	return &Owned{absent: true, alloc: Heap}
}

// Adopt takes ownership of storage previously released with Release or
// produced by a. The caller must not use b afterwards.
func Adopt(a Allocator, b []byte, absent bool) *Owned {
	if a == nil {
		a = Heap
	}
	if absent {
		return &Owned{absent: true, alloc: a}
	}
	if b == nil {
		b = []byte{}
	}
	return &Owned{data: b, alloc: a}
}

// IsAbsent reports whether the buffer is in the absent state. A destroyed
// buffer reads as absent.
func (o *Owned) IsAbsent() bool {
	if o == nil {
		return true
	}
	return o.absent || o.state.Load() != stateLive
}

// AsSlice returns the payload. It is nil for absent, destroyed or released
// buffers and a non-nil empty slice for an empty buffer.
func (o *Owned) AsSlice() []byte {
	if o == nil || o.absent || o.state.Load() != stateLive {
		return nil
	}
	return o.data
}

// Len returns the payload length.
func (o *Owned) Len() int {
	return len(o.AsSlice())
}

// Destroyed reports whether Destroy already ran on o.
func (o *Owned) Destroyed() bool {
	return o != nil && o.state.Load() == stateDestroyed
}

// Populate installs a fresh copy of data in the output slot o, drawing storage
// from a. The previous content of o is overwritten and not freed.
func Populate(o *Owned, a Allocator, data []byte) error {
	if o == nil {
		return nil
	}
	fresh, err := FromBytesIn(a, data)
	if err != nil {
		return err
	}
	o.data = fresh.data
	o.absent = false
	o.alloc = fresh.alloc
	o.state.Store(stateLive)
	return nil
}

// Release hands the raw storage to a foreign owner. After Release the Owned is
// inert; the new owner frees the storage through the same Allocator, usually
// by calling Adopt followed by Destroy.
func (o *Owned) Release() (data []byte, absent bool, err error) {
	if o == nil {
		return nil, true, nil
	}
	switch old := o.state.Swap(stateReleased); old {
	case stateDestroyed:
		o.state.Store(stateDestroyed)
		return nil, false, ErrDoubleDestroy
	case stateReleased:
		return nil, false, ErrReleased
	}
	data, absent = o.data, o.absent
	o.data = nil
	return data, absent, nil
}

// Destroy wipes and frees o. Destroying nil is a no-op; destroying the same
// buffer twice returns ErrDoubleDestroy and frees nothing.
func Destroy(o *Owned) error {
	if o == nil {
		return nil
	}
	switch old := o.state.Swap(stateDestroyed); old {
	case stateDestroyed:
		return ErrDoubleDestroy
	case stateReleased:
		o.state.Store(stateReleased)
		return ErrReleased
	}
	data := o.data
	o.data = nil
	if o.absent || cap(data) == 0 {
		return nil
	}
	full := data[:cap(data)]
	for i := range full {
		full[i] = 0
	}
	runtime.KeepAlive(full)
	return o.alloc.Free(full)
}
