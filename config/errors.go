package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration failures.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrInvalid indicates a parameter value outside its allowed range.
	ErrInvalid = errors.New("invalid parameter")

	// ErrUnknownFirmware indicates a firmware type that is not registered.
	ErrUnknownFirmware = errors.New("unknown firmware type")

	// ErrUnknownVersion indicates a version missing from the firmware's table.
	ErrUnknownVersion = errors.New("unknown firmware version")

	// ErrInapplicable indicates an argument the selected firmware version does not use.
	ErrInapplicable = errors.New("argument does not apply to this firmware version")

	// ErrMissingSource indicates that no source file was given.
	ErrMissingSource = errors.New("missing source")
)

// Error is a configuration error for one parameter. It is reported before
// any processing starts.
type Error struct {
	// Kind is the sentinel error for classification (e.g., ErrInvalid).
	Kind  error
	Param string
	Value any
	// Reason is an optional human readable detail.
	Reason string
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %v", e.Param, e.Kind)
	if e.Value != nil {
		s = fmt.Sprintf("%s %v: %v", e.Param, e.Value, e.Kind)
	}
	if e.Reason != "" {
		s += ": " + e.Reason
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewError(kind error, param string, value any, reason string) *Error {
	return &Error{Kind: kind, Param: param, Value: value, Reason: reason}
}

// Warning reports a parameter that was accepted but adjusted or looks
// suspicious.
type Warning struct {
	Param   string
	Value   any
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s=%v: %s", w.Param, w.Value, w.Message)
}
