// Package errchan implements the error channel of the flat call surface: an
// optional caller-supplied slot that receives a UTF-8 diagnostic when a call
// fails and is left untouched when it succeeds.
package errchan

import (
	"fmt"
	"strings"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/buffer"
)

// Status is the coarse numeric outcome of a boundary call.
type Status int32

const (
	StatusOK Status = iota
	StatusNoKeyLoaded
	StatusDecode
	StatusTypeMismatch
	StatusRange
	StatusArgument
	StatusIO
	StatusInternalEvaluation
)

var kindStatus = map[tfhe.Kind]Status{
	tfhe.KindNone:               StatusOK,
	tfhe.KindNoKeyLoaded:        StatusNoKeyLoaded,
	tfhe.KindDecode:             StatusDecode,
	tfhe.KindTypeMismatch:       StatusTypeMismatch,
	tfhe.KindRange:              StatusRange,
	tfhe.KindArgument:           StatusArgument,
	tfhe.KindIO:                 StatusIO,
	tfhe.KindInternalEvaluation: StatusInternalEvaluation,
}

// StatusOf maps err onto a Status.
func StatusOf(err error) Status {
	if s, ok := kindStatus[tfhe.KindOf(err)]; ok {
		return s
	}
	return StatusInternalEvaluation
}

// Kind returns the taxonomy entry s stands for.
func (s Status) Kind() tfhe.Kind {
	for k, v := range kindStatus {
		if v == s {
			return k
		}
	}
	return tfhe.KindInternalEvaluation
}

func (s Status) String() string {
	switch {
	case s == StatusOK:
		return "ok"
	case s > StatusOK && s <= StatusInternalEvaluation:
		return s.Kind().String()
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// Message renders err as the diagnostic written into an error slot. Invalid
// UTF-8 sequences are replaced.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return strings.ToValidUTF8(err.Error(), "\uFFFD")
}

// Channel is the error slot of one call. A nil slot discards diagnostics.
type Channel struct {
	slot  *buffer.Owned
	alloc buffer.Allocator
}

// New binds slot and the allocator message bytes are drawn from. A nil
// allocator draws from buffer.Heap.
func New(slot *buffer.Owned, a buffer.Allocator) Channel {
	return Channel{slot: slot, alloc: a}
}

// Report writes err into the slot when err is non-nil, replacing whatever the
// slot held, and returns the matching Status. A nil err leaves the slot alone.
func (c Channel) Report(err error) Status {
	if err == nil {
		return StatusOK
	}
	if c.slot != nil {
		// A failed allocation leaves the slot as it was; the status still
		// reports the original failure.
		_ = buffer.Populate(c.slot, c.alloc, []byte(Message(err)))
	}
	return StatusOf(err)
}

// Do runs fn, converts a panic into an internal evaluation error and reports
// the outcome.
func (c Channel) Do(fn func() error) Status {
	return c.Report(capture(fn))
}

// Value runs fn like Do and returns its result, or fallback when it failed.
func Value[T any](c Channel, fallback T, fn func() (T, error)) (T, Status) {
	var out T
	err := capture(func() (err error) {
		out, err = fn()
		return err
	})
	if err != nil {
		return fallback, c.Report(err)
	}
	return out, StatusOK
}

func capture(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = tfhe.Recovered(r)
		}
	}()
	return fn()
}
