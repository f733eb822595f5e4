package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. The values double as stable error codes
// surfaced in logs (the telegram router picks them up via Code()).
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindInvalidField        Kind = "INVALID_FIELD"
	KindDuplicatePayload    Kind = "DUPLICATE_PAYLOAD"
	KindAlreadyConsumed     Kind = "ALREADY_CONSUMED"
	KindAmountMismatch      Kind = "AMOUNT_MISMATCH"
	KindUnknownPayload      Kind = "UNKNOWN_PAYLOAD"
	KindConstraintViolation Kind = "CONSTRAINT_VIOLATION"
	KindEmptyCart           Kind = "EMPTY_CART"
	KindNoActiveSession     Kind = "NO_ACTIVE_SESSION"
	KindValidationFailed    Kind = "VALIDATION_FAILED"
	KindInternal            Kind = "INTERNAL"
)

// Error is the coded error type used across the shop services.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, string(e.Kind))
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code exposes the kind as a stable code for log enrichment.
func (e *Error) Code() string { return string(e.Kind) }

// E builds a coded error with a human-readable message.
func E(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Ef builds a coded error with a formatted message.
func Ef(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and operation to an underlying error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from err, or KindInternal for uncoded errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
