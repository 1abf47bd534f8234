package caml

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel matched by every argument validation
// failure in this package. Use errors.Is or IsInvalidArgument.
var ErrInvalidArgument = errors.New("caml: invalid argument")

// ArgumentError reports a rejected constructor or mutator argument.
//
// Param names the offending argument ("name", "value", "literal", ...).
// ArgumentError unwraps to ErrInvalidArgument.
type ArgumentError struct {
	Param   string
	Message string
}

func newArgumentError(param, message string) *ArgumentError {
	return &ArgumentError{Param: param, Message: message}
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%v: %s: %s", ErrInvalidArgument, e.Param, e.Message)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidArgument, e.Message)
}

// Unwrap returns ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// IsInvalidArgument returns true if err is, or wraps, an argument error.
func IsInvalidArgument(err error) bool {
	var ae *ArgumentError
	if errors.As(err, &ae) {
		return true
	}
	return errors.Is(err, ErrInvalidArgument)
}

// Must panics if err is non-nil and returns v otherwise.
// Use only for trees built from literals known to be valid, e.g.
//
//	eq := caml.Must(caml.EqualLiteral(caml.Field("Status"), caml.ValueTypeText, "Active"))
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
