package placement

import (
	"errors"
	"fmt"

	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

var (
	// ErrRenumberFailed means a fresh renumber still left no valid key for
	// the move. The container store is inconsistent or was mutated
	// concurrently; the transaction must be aborted.
	ErrRenumberFailed = errors.New("unable to determine a usable sort key after renumbering")

	// ErrStoreUnavailable matches every failure reported by the backing
	// container store.
	ErrStoreUnavailable = errors.New("ordered container store unavailable")

	// ErrKeySpaceExhausted matches *ExhaustionError.
	ErrKeySpaceExhausted = errors.New("no unused sort key available")

	ErrInvalidMove    = errors.New("invalid move request")
	ErrMemberNotFound = errors.New("member not found in container")
)

// errRenumberRequired signals that the candidate key is unusable. It never
// leaves the Placer.
var errRenumberRequired = errors.New("renumber required")

// Code classifies placement failures.
type Code string

const (
	CodeRenumberFailed Code = "renumber_failed"
	CodeInvalidMove    Code = "invalid_move"
)

// Error carries a code and the container involved while keeping the
// underlying sentinel reachable through Unwrap.
type Error struct {
	Code      Code
	Container mcontainer.Ref
	Member    mcontainer.Member
	Candidate sortkey.Key
	Message   string
	cause     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	return fmt.Sprintf("%s: move %s: %s", e.Container, e.Member, msg)
}

func (e *Error) Unwrap() error { return e.cause }

func renumberFailed(ref mcontainer.Ref, member mcontainer.Member, candidate sortkey.Key) *Error {
	return &Error{
		Code:      CodeRenumberFailed,
		Container: ref,
		Member:    member,
		Candidate: candidate,
		Message:   fmt.Sprintf("renumbered, then came up with %d but that still conflicts with something", candidate),
		cause:     ErrRenumberFailed,
	}
}

func invalidMove(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMove, fmt.Sprintf(format, args...))
}

// StoreError wraps a failure of the backing store. It matches both
// ErrStoreUnavailable and the wrapped error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ordered container %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) || errors.Is(err, ErrMemberNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &StoreError{Op: op, Err: err}
}
