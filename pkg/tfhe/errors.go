package tfhe

import (
	"errors"
	"fmt"

	"github.com/fhenixprotocol/go-tfhe/internal/bindings"
)

// Error taxonomy. Every error returned by the engine wraps exactly one of these
// so callers can branch with errors.Is.
var (
	// ErrNoKeyLoaded reports that the key role an operation needs is not resident.
	ErrNoKeyLoaded = errors.New("tfhe: no key loaded")
	// ErrDecode reports malformed or corrupt serialized bytes.
	ErrDecode = errors.New("tfhe: decode error")
	// ErrTypeMismatch reports operands whose widths disagree with each other or
	// with the declared width.
	ErrTypeMismatch = errors.New("tfhe: type mismatch")
	// ErrRange reports a scalar that does not fit the declared width.
	ErrRange = errors.New("tfhe: value out of range")
	// ErrArgument reports a missing required buffer or an unknown tag.
	ErrArgument = errors.New("tfhe: invalid argument")
	// ErrIO reports a file system failure while generating or loading keys.
	ErrIO = errors.New("tfhe: i/o error")
	// ErrInternalEvaluation reports a failure inside the scheme. It is fatal for
	// the call only.
	ErrInternalEvaluation = errors.New("tfhe: internal evaluation error")
)

var (
	// ErrLibraryClosed is returned when a Library is used or closed after Close.
	ErrLibraryClosed = errors.New("tfhe: library closed")

	// ErrNotBuilt reports that the native tfhe-rs bindings are not linked into
	// this binary.
	ErrNotBuilt = bindings.ErrNotBuilt

	// ErrCGONotEnabled reports a build without cgo.
	ErrCGONotEnabled = bindings.ErrCGONotEnabled
)

// Kind classifies an error into the taxonomy.
type Kind uint8

const (
	KindNone Kind = iota
	KindNoKeyLoaded
	KindDecode
	KindTypeMismatch
	KindRange
	KindArgument
	KindIO
	KindInternalEvaluation
)

var kindSentinels = []struct {
	kind Kind
	err  error
}{
	{KindNoKeyLoaded, ErrNoKeyLoaded},
	{KindDecode, ErrDecode},
	{KindTypeMismatch, ErrTypeMismatch},
	{KindRange, ErrRange},
	{KindArgument, ErrArgument},
	{KindIO, ErrIO},
	{KindInternalEvaluation, ErrInternalEvaluation},
}

// KindOf returns the taxonomy entry of err. Errors outside the taxonomy count
// as KindInternalEvaluation; nil is KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindInternalEvaluation
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNoKeyLoaded:
		return "no key loaded"
	case KindDecode:
		return "decode error"
	case KindTypeMismatch:
		return "type mismatch"
	case KindRange:
		return "range error"
	case KindArgument:
		return "argument error"
	case KindIO:
		return "i/o error"
	case KindInternalEvaluation:
		return "internal evaluation error"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// remapError gives backend errors a place in the taxonomy. Errors that already
// carry a sentinel pass through unchanged; anything else becomes fallback.
func remapError(err error, fallback error) error {
	if err == nil {
		return nil
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return err
		}
	}
	if errors.Is(err, bindings.ErrNotBuilt) || errors.Is(err, bindings.ErrCGONotEnabled) {
		return fmt.Errorf("%w: %w", ErrInternalEvaluation, err)
	}
	return fmt.Errorf("%w: %w", fallback, err)
}

// Recovered converts a recovered panic value into an ErrInternalEvaluation.
func Recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: panic: %w", ErrInternalEvaluation, err)
	}
	return fmt.Errorf("%w: panic: %v", ErrInternalEvaluation, r)
}
