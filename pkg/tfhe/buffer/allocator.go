package buffer

import (
	"errors"
	"sync"
)

// ErrUnknownAllocation is returned by Tracker.Free for storage it did not hand
// out, which includes storage that was already freed.
var ErrUnknownAllocation = errors.New("buffer: free of unknown allocation")

// Allocator provides the storage behind Owned buffers. Implementations backed by
// a foreign heap (for example the C heap of a c-shared build) let the other side
// of the boundary free the memory with its own manager.
type Allocator interface {
	// Alloc returns a slice of exactly n bytes.
	Alloc(n int) ([]byte, error)
	// Free returns storage obtained from Alloc. It receives the full-capacity
	// slice.
	Free(b []byte) error
}

// Heap allocates from the Go heap. Free is a no-op; the garbage collector
// reclaims the storage.
var Heap Allocator = heapAllocator{}

type heapAllocator struct{}

func (heapAllocator) Alloc(n int) ([]byte, error) { return make([]byte, n), nil }

func (heapAllocator) Free([]byte) error { return nil }

// Tracker wraps another Allocator and keeps a record of every live allocation.
// It turns a double free into ErrUnknownAllocation and lets tests assert that
// nothing leaked.
type Tracker struct {
	next Allocator

	mu    sync.Mutex
	live  map[*byte]int
	total int
}

// NewTracker returns a Tracker over next. A nil next uses Heap.
func NewTracker(next Allocator) *Tracker {
	if next == nil {
		next = Heap
	}
	return &Tracker{next: next, live: make(map[*byte]int)}
}

// Alloc implements Allocator.
func (t *Tracker) Alloc(n int) ([]byte, error) {
	b, err := t.next.Alloc(n)
	if err != nil {
		return nil, err
	}
	if cap(b) == 0 {
		return b, nil
	}
	t.mu.Lock()
	t.live[&b[:1][0]] = cap(b)
	t.total++
	t.mu.Unlock()
	return b, nil
}

// Free implements Allocator.
func (t *Tracker) Free(b []byte) error {
	if cap(b) == 0 {
		return nil
	}
	key := &b[:1][0]
	t.mu.Lock()
	_, ok := t.live[key]
	if ok {
		delete(t.live, key)
	}
	t.mu.Unlock()
	if !ok {
		return ErrUnknownAllocation
	}
	return t.next.Free(b)
}

// Live returns the number of allocations not yet freed.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Total returns the number of non-empty allocations made so far.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
