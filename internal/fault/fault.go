// Package fault defines the domain error taxonomy shared by services and storage.
//
// Every error that crosses a service boundary carries a Kind so the transport
// layer can map it to a status code without string matching.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindInternal is the zero value: an unexpected failure.
	KindInternal Kind = iota
	// KindNotFound means a group, member, or contribution does not exist.
	KindNotFound
	// KindForbidden means the caller is not allowed to act (not an active
	// member, not the receiver, group closed to them).
	KindForbidden
	// KindInvalidState means the requested status transition is not permitted
	// from the current status.
	KindInvalidState
	// KindConflict means a duplicate settlement attempt or a group closed
	// mid-action.
	KindConflict
	// KindValidation means malformed input (amount, date, missing field).
	KindValidation
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is a kinded domain error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...any) error { return New(KindNotFound, format, args...) }

// Forbidden creates a KindForbidden error.
func Forbidden(format string, args ...any) error { return New(KindForbidden, format, args...) }

// InvalidState creates a KindInvalidState error.
func InvalidState(format string, args ...any) error { return New(KindInvalidState, format, args...) }

// Conflict creates a KindConflict error.
func Conflict(format string, args ...any) error { return New(KindConflict, format, args...) }

// Validation creates a KindValidation error.
func Validation(format string, args ...any) error { return New(KindValidation, format, args...) }

// KindOf reports the kind of err, or KindInternal if it carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
