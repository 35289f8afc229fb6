package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per error kind. errors.Is matches an *Error against
// the sentinel of its kind.
var (
	ErrFormat    = errors.New("format error")
	ErrReference = errors.New("reference error")
	ErrDivision  = errors.New("division error")
	ErrInvariant = errors.New("invariant error")
)

// Kind classifies why a run was aborted
type Kind string

const (
	KindFormat    Kind = "format"
	KindReference Kind = "reference"
	KindDivision  Kind = "division"
	KindInvariant Kind = "invariant"
)

// Error wraps an underlying error with the operation and the offending record
type Error struct {
	Kind   Kind
	Op     string
	Record string // Optional: offending line or record name
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Record != "" {
		base += fmt.Sprintf(" (%s)", e.Record)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return sentinel(e.Kind) == target
}

// IsKind helps callers classify errors without a type assertion
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// Format reports a malformed record
func Format(op, record string, err error) *Error {
	return &Error{Kind: KindFormat, Op: op, Record: record, Err: err}
}

// Formatf is Format with a formatted message as the cause
func Formatf(op, record, format string, args ...any) *Error {
	return Format(op, record, fmt.Errorf(format, args...))
}

// Reference reports a participant name or index missing from the roster
func Reference(op, record string, err error) *Error {
	return &Error{Kind: KindReference, Op: op, Record: record, Err: err}
}

// Division reports a non-positive divisor
func Division(op, record string, err error) *Error {
	return &Error{Kind: KindDivision, Op: op, Record: record, Err: err}
}

// Invariant reports a failed consistency check
func Invariant(op, record string, err error) *Error {
	return &Error{Kind: KindInvariant, Op: op, Record: record, Err: err}
}

func sentinel(k Kind) error {
	switch k {
	case KindFormat:
		return ErrFormat
	case KindReference:
		return ErrReference
	case KindDivision:
		return ErrDivision
	case KindInvariant:
		return ErrInvariant
	default:
		return nil
	}
}
