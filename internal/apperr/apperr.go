// Package apperr classifies failures into the kinds callers can act on.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type Kind string

const (
	InvalidInput       Kind = "invalid_input"
	Forbidden          Kind = "forbidden"
	NotFound           Kind = "not_found"
	Conflict           Kind = "conflict"
	PreconditionFailed Kind = "precondition_failed"
	Internal           Kind = "internal"
)

// Error carries a public message. The wrapped cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// With returns a copy of the sentinel carrying details; errors.Is against the
// sentinel still holds.
func With(sentinel *Error, details map[string]string) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Details: details, Err: sentinel}
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromStore turns a raw storage failure into a classified error. Errors that
// are already classified pass through unchanged.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Wrap(NotFound, "not found", err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return Wrap(Conflict, "already exists", err)
		case "23503":
			return Wrap(PreconditionFailed, "referenced by other records", err)
		case "23514", "22P02", "22003":
			return Wrap(InvalidInput, "invalid value", err)
		}
	}
	return Wrap(Internal, "internal error", err)
}
