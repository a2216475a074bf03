// Package apperr classifies errors into the three kinds callers can act on.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	BadRequest
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case BadRequest:
		return "bad_request"
	default:
		return "server_error"
	}
}

// ErrNotFound is matched by errors.Is for every NotFound error.
var ErrNotFound = errors.New("not found")

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == NotFound
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: NotFound, Err: fmt.Errorf(format, args...)}
}

func BadRequestf(format string, args ...any) error {
	return &Error{Kind: BadRequest, Err: fmt.Errorf(format, args...)}
}

// Wrap marks err as a server error. A nil err stays nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Internal, Err: err}
}

// KindOf reports the kind of the outermost classified error, Internal otherwise.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return NotFound
	}
	return Internal
}
