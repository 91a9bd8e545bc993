// Package apperr defines the error kinds shared by the store, upload and
// handler layers. Handlers map a Kind to an HTTP status exactly once, in
// (*handlers.Handler).fail.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidID
	KindNotFound
	KindDuplicate
	KindDuplicateSlot
	KindDuplicateAccount
	KindUnsupportedMedia
	KindInvalidCredentials
	KindUnauthenticated
	KindRateLimited
)

var kindNames = map[Kind]string{
	KindInternal:           "InternalError",
	KindValidation:         "ValidationError",
	KindInvalidID:          "InvalidId",
	KindNotFound:           "NotFound",
	KindDuplicate:          "Duplicate",
	KindDuplicateSlot:      "DuplicateSlot",
	KindDuplicateAccount:   "DuplicateAccount",
	KindUnsupportedMedia:   "UnsupportedMediaType",
	KindInvalidCredentials: "InvalidCredentials",
	KindUnauthenticated:    "Unauthenticated",
	KindRateLimited:        "RateLimited",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is an error tagged with a Kind. Fields lists every violated input
// field for KindValidation.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation returns a KindValidation error carrying the violated fields.
func Validation(msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// KindOf reports the Kind of err. Errors that were never tagged are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
