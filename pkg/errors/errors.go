// Package errors provides structured error handling for the flight engine.
//
// Construction-time misconfiguration is returned to the caller immediately.
// Faults on the per-frame path (tick callbacks, triggered applies) are sent
// to the global [ErrorHandler] instead of propagating, so a broken edge never
// takes down a frame.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindTypeMismatch indicates interpolation between incompatible value kinds.
	KindTypeMismatch
	// KindMissingTarget indicates the animated target was destroyed or never bound.
	KindMissingTarget
	// KindDegenerateDuration indicates a zero or negative duration.
	KindDegenerateDuration
	// KindConfiguration indicates invalid construction parameters.
	KindConfiguration
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindTypeMismatch:
		return "type-mismatch"
	case KindMissingTarget:
		return "missing-target"
	case KindDegenerateDuration:
		return "degenerate-duration"
	case KindConfiguration:
		return "configuration"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel errors for use with errors.Is. A *FlightError matches the
// sentinel of its Kind.
var (
	ErrTypeMismatch       = stderrors.New("value kinds do not match")
	ErrMissingTarget      = stderrors.New("target is not available")
	ErrDegenerateDuration = stderrors.New("duration is not positive")
	ErrConfiguration      = stderrors.New("invalid configuration")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindTypeMismatch:
		return ErrTypeMismatch
	case KindMissingTarget:
		return ErrMissingTarget
	case KindDegenerateDuration:
		return ErrDegenerateDuration
	case KindConfiguration:
		return ErrConfiguration
	default:
		return nil
	}
}

// FlightError represents a structured error in the flight engine.
type FlightError struct {
	// Op is the operation that failed (e.g., "interpolate.New").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Key is the animated property key, if applicable.
	Key string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *FlightError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s [%s] key=%s: %v", e.Op, e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *FlightError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *FlightError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// New builds a FlightError for op with a formatted message.
func New(op string, kind ErrorKind, format string, args ...any) *FlightError {
	return &FlightError{
		Op:   op,
		Kind: kind,
		Err:  fmt.Errorf(format, args...),
	}
}

// KindOf returns the Kind of the first *FlightError in err's chain,
// or KindUnknown.
func KindOf(err error) ErrorKind {
	var fe *FlightError
	if stderrors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.Sequence.tick").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs on the frame path.
	HandleError(err *FlightError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
