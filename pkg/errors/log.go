package errors

import (
	"go.uber.org/zap"
)

// LogHandler is an ErrorHandler that writes to a zap logger.
type LogHandler struct {
	// Logger receives the entries. Nil falls back to zap.L().
	Logger *zap.Logger
	// Verbose enables stack traces in the output.
	Verbose bool
}

func (h *LogHandler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	h.logger().Error("motion error",
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
		zap.Time("at", err.Timestamp),
	)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("motion panic", fields...)
}
