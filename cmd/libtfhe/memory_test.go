//go:build cgo

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/buffer"
)

func TestVectorLifecycle(t *testing.T) {
	a := newCAllocator()

	v, err := a.newVector([]byte("ciphertext"), false)
	require.NoError(t, err)
	assert.False(t, v.none)
	assert.Equal(t, 10, v.len)
	assert.Equal(t, 1, a.Live())

	require.NoError(t, a.destroy(v))
	assert.Equal(t, 0, a.Live())
	require.ErrorIs(t, a.destroy(v), buffer.ErrUnknownAllocation, "second destroy is refused")
}

func TestVectorAbsentAndEmpty(t *testing.T) {
	a := newCAllocator()

	none, err := a.newVector(nil, true)
	require.NoError(t, err)
	assert.True(t, none.none)

	empty, err := a.newVector([]byte{}, false)
	require.NoError(t, err)
	assert.False(t, empty.none)
	assert.True(t, empty.ptr == nil, "empty vector has no storage")
	assert.Zero(t, empty.len)

	require.NoError(t, a.destroy(none))
	require.NoError(t, a.destroy(empty))
	assert.Zero(t, a.Live())
}

func TestReleaseOwnedFromCAllocator(t *testing.T) {
	a := newCAllocator()
	o, err := buffer.FromBytesIn(a, []byte{1, 2, 3})
	require.NoError(t, err)

	v := release(o)
	require.False(t, v.none)
	require.ErrorIs(t, buffer.Destroy(o), buffer.ErrReleased, "ownership moved to the C caller")
	require.NoError(t, a.destroy(v))

	assert.True(t, release(buffer.Absent()).none)
}

func TestTagNarrowing(t *testing.T) {
	assert.Equal(t, uint8(2), tag(2))
	assert.Equal(t, uint8(0xff), tag(-1))
	assert.Equal(t, uint8(0xff), tag(1000))
}
