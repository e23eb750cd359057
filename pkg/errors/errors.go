// Package errors provides structured error handling for motion.
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
	// KindInvalidArgument indicates a caller supplied an out-of-range value.
	KindInvalidArgument
	// KindConfig indicates a configuration loading or validation error.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindServer indicates a debug server failure.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error represents a structured error in motion.
type Error struct {
	// Op is the operation that failed (e.g., "animation.ProgressRunner.Start").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument wraps err as a KindInvalidArgument error for op.
func InvalidArgument(op string, err error) *Error {
	return &Error{Op: op, Kind: KindInvalidArgument, Err: err, Timestamp: time.Now()}
}

// KindOf reports the kind of the first *Error in err's tree.
func KindOf(err error) ErrorKind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.DisplayLink.frame").
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

// ErrorHandler receives errors reported by motion.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
