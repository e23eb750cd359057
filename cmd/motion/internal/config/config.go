// Package config loads the optional motion.yaml configuration.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

// FileName is the configuration file looked up in the project root.
const FileName = "motion.yaml"

// SupportedMajor is the configuration schema major version understood by
// this build.
const SupportedMajor = "v1"

// Config represents the motion.yaml configuration.
type Config struct {
	Version string        `yaml:"version,omitempty"`
	Display DisplayConfig `yaml:"display"`
	Run     RunConfig     `yaml:"run"`
	Log     LogConfig     `yaml:"log"`
	Debug   DebugConfig   `yaml:"debug"`
}

// DisplayConfig describes the frame source.
type DisplayConfig struct {
	// RefreshHz is the display link tick rate.
	RefreshHz float64 `yaml:"refresh_hz,omitempty"`
	// ToleranceHz is the frame rate whose frame length is used as the
	// boundary tolerance.
	ToleranceHz float64 `yaml:"tolerance_hz,omitempty"`
}

// RunConfig holds the default Start arguments.
type RunConfig struct {
	Duration time.Duration `yaml:"duration,omitempty"`
	Elapsed  time.Duration `yaml:"elapsed,omitempty"`
	Reversed bool          `yaml:"reversed,omitempty"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Development bool `yaml:"development,omitempty"`
}

// DebugConfig controls the debug HTTP server and frame trace.
type DebugConfig struct {
	Addr          string `yaml:"addr,omitempty"`
	TraceCapacity int    `yaml:"trace_capacity,omitempty"`
}

// MaxRateHz is the highest frame rate whose frame length is still at least
// one nanosecond.
const MaxRateHz = float64(time.Second)

// validRate reports whether hz is unset (0) or has a usable frame length.
func validRate(hz float64) bool {
	return hz == 0 || animation.FrameLength(hz) > 0
}

// ValidateRate checks a frame rate given on the command line.
func ValidateRate(hz float64) error {
	if animation.FrameLength(hz) == 0 {
		return fmt.Errorf("must be a positive rate of at most %g Hz (got %v)", MaxRateHz, hz)
	}
	return nil
}

// Resolved contains the loaded configuration and where it came from.
type Resolved struct {
	Root       string
	ModulePath string
	Path       string
	// Found is false when no file existed and Config holds the defaults.
	Found  bool
	Config *Config
}

// Describe summarizes where the configuration came from, for display.
func (r *Resolved) Describe() string {
	source := r.Path
	if !r.Found {
		source = fmt.Sprintf("defaults (no %s in %s)", FileName, r.Root)
	}
	if r.ModulePath != "" {
		return fmt.Sprintf("config: %s, module %s", source, r.ModulePath)
	}
	return "config: " + source
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: SupportedMajor,
		Display: DisplayConfig{
			RefreshHz:   animation.DefaultRefreshRate,
			ToleranceHz: 120,
		},
		Run: RunConfig{
			Duration: time.Second,
		},
		Debug: DebugConfig{
			TraceCapacity: 240,
		},
	}
}

// Tolerance returns the boundary tolerance derived from ToleranceHz.
func (c *Config) Tolerance() time.Duration {
	return animation.ToleranceForRate(c.Display.ToleranceHz)
}

// Load reads the configuration at path. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(fmt.Errorf("failed to read %s: %w", path, err))
	}
	return Parse(data)
}

// LoadOptional reads motion.yaml from dir if present and returns defaults
// otherwise.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, configError(fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and fills in an empty version.
func (c *Config) Validate() error {
	version := strings.TrimSpace(c.Version)
	if version == "" {
		version = SupportedMajor
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return configError(fmt.Errorf("version %q is not a valid semantic version", c.Version))
	}
	if major := semver.Major(version); major != SupportedMajor {
		return configError(fmt.Errorf("version %s is not supported (want %s.x)", version, SupportedMajor))
	}
	c.Version = version

	if !validRate(c.Display.RefreshHz) {
		return configError(fmt.Errorf("display.refresh_hz must be 0 or within (0, %g] (got %v)", MaxRateHz, c.Display.RefreshHz))
	}
	if !validRate(c.Display.ToleranceHz) {
		return configError(fmt.Errorf("display.tolerance_hz must be 0 or within (0, %g] (got %v)", MaxRateHz, c.Display.ToleranceHz))
	}
	if c.Run.Duration <= 0 {
		return configError(fmt.Errorf("run.duration must be positive (got %v)", c.Run.Duration))
	}
	if c.Run.Elapsed < 0 || c.Run.Elapsed > c.Run.Duration {
		return configError(fmt.Errorf("run.elapsed must be within [0, %v] (got %v)", c.Run.Duration, c.Run.Elapsed))
	}
	if c.Debug.TraceCapacity < 0 {
		return configError(fmt.Errorf("debug.trace_capacity must not be negative (got %d)", c.Debug.TraceCapacity))
	}
	return nil
}

// Resolve loads the configuration for the project rooted at dir. When
// explicitPath is set it is loaded instead of dir/motion.yaml and must exist.
func Resolve(dir, explicitPath string) (*Resolved, error) {
	var (
		cfg  *Config
		err  error
		path string
	)
	found := true
	if explicitPath != "" {
		path = explicitPath
		cfg, err = Load(explicitPath)
	} else {
		path = filepath.Join(dir, FileName)
		if _, statErr := os.Stat(path); statErr != nil {
			found = false
		}
		cfg, err = LoadOptional(dir)
	}
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Root:       dir,
		ModulePath: modulePath(dir),
		Path:       path,
		Found:      found,
		Config:     cfg,
	}, nil
}

// FindProjectRoot walks up from start to the first directory containing
// motion.yaml or go.mod. It returns start when neither is found.
func FindProjectRoot(start string) string {
	dir := start
	for {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// modulePath returns the module path declared in dir/go.mod, if any.
func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func configError(err error) error {
	return &errors.Error{Op: "config.Load", Kind: errors.KindConfig, Err: err, Timestamp: time.Now()}
}
