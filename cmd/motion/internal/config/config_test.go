package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOptionalMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, animation.DefaultTolerance, cfg.Tolerance())
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
version: "1.2"
display:
  refresh_hz: 60
run:
  duration: 500ms
  elapsed: 250ms
  reversed: true
log:
  development: true
debug:
  addr: "127.0.0.1:0"
`))
	require.NoError(t, err)

	assert.Equal(t, "v1.2", cfg.Version)
	assert.Equal(t, 60.0, cfg.Display.RefreshHz)
	assert.Equal(t, 120.0, cfg.Display.ToleranceHz, "unset fields keep defaults")
	assert.Equal(t, 500*time.Millisecond, cfg.Run.Duration)
	assert.Equal(t, 250*time.Millisecond, cfg.Run.Elapsed)
	assert.True(t, cfg.Run.Reversed)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "127.0.0.1:0", cfg.Debug.Addr)
	assert.Equal(t, 240, cfg.Debug.TraceCapacity)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "run: [unterminated"},
		{"bad version", "version: banana"},
		{"unsupported major", "version: v2.0.0"},
		{"negative refresh", "display:\n  refresh_hz: -1"},
		{"negative tolerance", "display:\n  tolerance_hz: -5"},
		{"sub-nanosecond refresh", "display:\n  refresh_hz: 2000000000"},
		{"sub-nanosecond tolerance", "display:\n  tolerance_hz: 2000000000"},
		{"zero duration", "run:\n  duration: 0s"},
		{"elapsed past duration", "run:\n  duration: 1s\n  elapsed: 2s"},
		{"negative trace capacity", "debug:\n  trace_capacity: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, errors.KindConfig, errors.KindOf(err))
		})
	}
}

func TestToleranceFollowsToleranceHz(t *testing.T) {
	cfg, err := Parse([]byte("display:\n  tolerance_hz: 60"))
	require.NoError(t, err)
	assert.Equal(t, time.Second/60, cfg.Tolerance())
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/fader\n\ngo 1.24\n")
	writeFile(t, dir, FileName, "run:\n  duration: 2s\n")

	resolved, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "example.com/fader", resolved.ModulePath)
	assert.Equal(t, filepath.Join(dir, FileName), resolved.Path)
	assert.Equal(t, 2*time.Second, resolved.Config.Run.Duration)
	assert.True(t, resolved.Found)
	assert.Equal(t, "config: "+filepath.Join(dir, FileName)+", module example.com/fader", resolved.Describe())
}

func TestResolveWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	resolved, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.False(t, resolved.Found)
	assert.Equal(t, Default(), resolved.Config)
	assert.Equal(t, "config: defaults (no motion.yaml in "+dir+")", resolved.Describe())
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, ValidateRate(60))
	assert.NoError(t, ValidateRate(MaxRateHz))
	assert.Error(t, ValidateRate(2e9))
	assert.Error(t, ValidateRate(0))
	assert.Error(t, ValidateRate(-1))
}

func TestResolveExplicitPathMustExist(t *testing.T) {
	_, err := Resolve(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "version: v1\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, root, FindProjectRoot(nested))
}
