package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryInput    Category = "input"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
	CategoryProtocol Category = "protocol"
	CategoryStorage  Category = "storage"
)

// Error is a structured error with a code, an optional source and a hint.
type Error struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Source names the file, URI or session the error relates to.
	Source string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithSource sets the file, URI or session the error relates to.
func (e *Error) WithSource(s string) *Error {
	e.Source = s
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an uncoded Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in an Error with code unless it already is one.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// Classify maps library errors to coded errors. Errors that are already
// coded are returned unchanged; anything unrecognized becomes E001.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}

	var invalid *differ.InvalidInputError
	switch {
	case stderrors.As(err, &invalid):
		return New("E101").Wrap(err).
			WithSuggestion("Pass a JSON array, or a slice, array or iterable from Go code")
	case stderrors.Is(err, protocol.ErrBadMagic),
		stderrors.Is(err, protocol.ErrTruncated),
		stderrors.Is(err, protocol.ErrVarintOverflow),
		stderrors.Is(err, protocol.ErrItemTooLarge):
		return New("E301").Wrap(err)
	case stderrors.Is(err, fs.ErrNotExist):
		return New("E103").Wrap(err)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return New("E002").Wrap(err)
	default:
		return New("E001").Wrap(err)
	}
}
