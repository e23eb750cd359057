package logging

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/go-drift/motion/pkg/animation"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("development logger ready")
}

// TestNewProductionLogger ensures the production logger configuration succeeds.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("production logger ready")
}

// TestEventLoggerLevels checks lifecycle events at Info and updates at Debug.
func TestEventLoggerLevels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := EventLogger{Logger: zap.New(core)}
	id := uuid.New()

	for _, kind := range []animation.RunEventKind{
		animation.RunStarted, animation.RunUpdated, animation.RunCompleted, animation.RunStopped,
	} {
		l.OnRunEvent(animation.RunEvent{RunID: id, Kind: kind, Duration: time.Second, Finished: true})
	}

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "run started", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "run completed", entries[2].Message)
	assert.Equal(t, true, entries[2].ContextMap()["finished"])
	assert.Equal(t, id.String(), entries[3].ContextMap()["run_id"])
}

// TestEventLoggerNilLogger ensures a zero EventLogger is a no-op.
func TestEventLoggerNilLogger(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		EventLogger{}.OnRunEvent(animation.RunEvent{Kind: animation.RunStarted})
	})
}
