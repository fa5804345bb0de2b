package stock

import (
	"errors"
	"fmt"
)

// Kind classifies ledger failures for the caller.
type Kind string

const (
	// KindNotFound: article or location id does not exist.
	KindNotFound Kind = "not_found"
	// KindValidation: negative amount, zero-amount request, or loose pieces
	// that the article's shape does not allow. Fix the input, then retry.
	KindValidation Kind = "validation"
	// KindConflict: move exceeds the stock available at the source, or the
	// source and destination are the same place.
	KindConflict Kind = "conflict"
	// KindConcurrency: lost a row lock or serialization race. Retryable with
	// the same input.
	KindConcurrency Kind = "concurrency"
	// KindConstraint: the store rejected a write that should have been
	// impossible. Indicates a bug, not an input problem.
	KindConstraint Kind = "constraint"
)

type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, msg: msg, err: err}
}

// KindOf extracts the classification; empty for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether repeating the operation with unchanged input
// can succeed.
func Retryable(err error) bool { return KindOf(err) == KindConcurrency }
