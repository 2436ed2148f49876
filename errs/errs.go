// Package errs defines the error taxonomy shared by every service.
//
// Every failure that crosses a service boundary is an *Error carrying one of
// the kinds below. Callers branch on kind with IsKind or KindOf, never on
// message text.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Validation: a mandatory field is missing or malformed.
	Validation Kind = iota + 1
	// NotFound: no tweet/comment/reply/user matches the given identifier.
	NotFound
	// Unauthorized: the acting user fails an ownership or identity check.
	Unauthorized
	// Conflict: the operation would violate a uniqueness constraint.
	Conflict
	// Storage: the persistence layer failed; fatal to the request, never retried.
	Storage
	// PartialFailure: a multi-document operation was partially applied and
	// could not be rolled back. Must never be reported as success.
	PartialFailure
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	case Storage:
		return "storage"
	case PartialFailure:
		return "partial_failure"
	}

	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k})
// and the KindOf helper both work without comparing messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}

	return false
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or 0 if err is not from this taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
