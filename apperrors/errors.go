// Package apperrors defines the application error taxonomy.
//
// Every external failure (DynamoDB, ledger, IPFS, marketplace, HTTP) is
// normalized into one of five kinds at the adapter boundary; no raw SDK
// error type propagates past it.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is the default kind for adapter, ledger and decode failures.
	Internal Kind = iota
	// BadRequest covers malformed or conflicting caller input.
	BadRequest
	// Unauthorized covers missing or invalid signatures.
	Unauthorized
	// Forbidden is returned when the caller is not the contract/token owner.
	Forbidden
	// NotFound is returned when no matching entity or record exists.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a kinded application error.
type Error struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s", e.Kind, e.err.Error())
		}
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.err }

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// BadRequestf creates a BadRequest error.
func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: BadRequest, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorizedf creates an Unauthorized error.
func Unauthorizedf(format string, args ...any) *Error {
	return &Error{Kind: Unauthorized, Msg: fmt.Sprintf(format, args...)}
}

// Forbiddenf creates a Forbidden error.
func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: Forbidden, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Msg: fmt.Sprintf(format, args...)}
}

// Internalf creates an Internal error.
func Internalf(format string, args ...any) *Error {
	return &Error{Kind: Internal, Msg: fmt.Sprintf(format, args...)}
}

// Wrap normalizes err into an Internal error, preserving the cause.
// An error that already carries a kind is returned unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: Internal, err: err}
}

// WrapKind normalizes err into an error of the given kind, preserving the
// cause. An error that already carries a kind is returned unchanged.
func WrapKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: kind, err: err}
}

// KindOf extracts the kind from err, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// IsNotFound reports whether err carries the NotFound kind.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == NotFound
}
