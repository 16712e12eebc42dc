// Package errors provides structured error handling for fade.
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
	// KindConfig indicates an invalid controller configuration.
	KindConfig
	// KindLifecycle indicates an operation that does not fit the
	// controller's lifecycle, such as mounting without a driver.
	KindLifecycle
	// KindCallback indicates a failure inside a user callback.
	KindCallback
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindLifecycle:
		return "lifecycle"
	case KindCallback:
		return "callback"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel causes wrapped by [Error].
var (
	// ErrNegativeDuration reports a negative duration in a configuration.
	ErrNegativeDuration = stderrors.New("duration must not be negative")
	// ErrMissingCallback reports an auto-advance without a callback.
	ErrMissingCallback = stderrors.New("auto-advance requires a callback")
	// ErrMissingDriver reports a controller mounted without a timer source
	// or animation driver.
	ErrMissingDriver = stderrors.New("timer source and animation driver are required")
)

// Error represents a structured error in fade.
type Error struct {
	// Op is the operation that failed (e.g., "visibility.Mount").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Field names the offending configuration field, if applicable.
	Field string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s [%s] field=%s: %v", e.Op, e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is, or wraps, an [*Error] of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "visibility.autoAdvance").
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

// ErrorHandler receives errors reported by fade.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
