// Package logging provides zap logger helpers for the motion CLI.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-drift/motion/pkg/animation"
)

// New builds a zap.Logger configured for development or production.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// EventLogger logs runner events. Lifecycle events go to Info, per-frame
// updates to Debug.
type EventLogger struct {
	Logger *zap.Logger
}

// OnRunEvent implements animation.RunListener.
func (l EventLogger) OnRunEvent(event animation.RunEvent) {
	if l.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.Stringer("run_id", event.RunID),
		zap.Duration("elapsed", event.Elapsed),
		zap.Duration("duration", event.Duration),
		zap.Bool("reversed", event.Reversed),
	}
	switch event.Kind {
	case animation.RunStarted:
		l.Logger.Info("run started", fields...)
	case animation.RunUpdated:
		fields = append(fields, zap.Float64("fraction", event.Fraction), zap.Duration("dt", event.Delta))
		l.Logger.Debug("run update", fields...)
	case animation.RunCompleted:
		fields = append(fields, zap.Bool("finished", event.Finished))
		l.Logger.Info("run completed", fields...)
	case animation.RunStopped:
		l.Logger.Info("run stopped", fields...)
	}
}
