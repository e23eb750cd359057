package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/motion/cmd/motion/internal/config"
	"github.com/go-drift/motion/cmd/motion/internal/logging"
)

// runFlags are the flags shared by simulate and run. A nil pointer means the
// flag was not given and the config value applies.
type runFlags struct {
	configPath string
	duration   *time.Duration
	elapsed    *time.Duration
	reverse    *bool
	hz         *float64
}

// flagValue returns the value of a "--name value" or "--name=value" flag at
// args[i] and the number of extra arguments consumed.
func flagValue(args []string, i int, name string) (string, int, error) {
	arg := args[i]
	if strings.HasPrefix(arg, name+"=") {
		return strings.TrimPrefix(arg, name+"="), 0, nil
	}
	if i+1 >= len(args) {
		return "", 0, fmt.Errorf("%s requires a value", name)
	}
	return args[i+1], 1, nil
}

func flagName(arg string) string {
	if idx := strings.IndexByte(arg, '='); idx >= 0 {
		return arg[:idx]
	}
	return arg
}

// parseRunFlag handles one shared flag. It reports whether args[i] was a
// shared flag and how many extra arguments it consumed.
func (f *runFlags) parseRunFlag(args []string, i int) (bool, int, error) {
	name := flagName(args[i])
	switch name {
	case "--reverse":
		if name != args[i] {
			v, err := strconv.ParseBool(strings.TrimPrefix(args[i], name+"="))
			if err != nil {
				return true, 0, fmt.Errorf("invalid --reverse: %w", err)
			}
			f.reverse = &v
			return true, 0, nil
		}
		v := true
		f.reverse = &v
		return true, 0, nil
	case "--config":
		v, n, err := flagValue(args, i, name)
		if err != nil {
			return true, 0, err
		}
		f.configPath = v
		return true, n, nil
	case "--duration", "--elapsed":
		v, n, err := flagValue(args, i, name)
		if err != nil {
			return true, 0, err
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return true, 0, fmt.Errorf("invalid %s: %w", name, err)
		}
		if name == "--duration" {
			f.duration = &d
		} else {
			f.elapsed = &d
		}
		return true, n, nil
	case "--hz":
		v, n, err := flagValue(args, i, name)
		if err != nil {
			return true, 0, err
		}
		hz, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return true, 0, fmt.Errorf("invalid --hz %q: must be a positive number", v)
		}
		if err := config.ValidateRate(hz); err != nil {
			return true, 0, fmt.Errorf("invalid --hz: %w", err)
		}
		f.hz = &hz
		return true, n, nil
	}
	return false, 0, nil
}

// resolveConfig loads motion.yaml (or the --config file) and applies the
// command line overrides to the resolved config.
func (f *runFlags) resolveConfig() (*config.Resolved, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	resolved, err := config.Resolve(config.FindProjectRoot(wd), f.configPath)
	if err != nil {
		return nil, err
	}
	cfg := resolved.Config
	if f.duration != nil {
		cfg.Run.Duration = *f.duration
	}
	if f.elapsed != nil {
		cfg.Run.Elapsed = *f.elapsed
	}
	if f.reverse != nil {
		cfg.Run.Reversed = *f.reverse
	}
	if f.hz != nil {
		cfg.Display.RefreshHz = *f.hz
	}
	return resolved, nil
}

// startElapsed returns the elapsed value a run starts from. A reversed run
// with no explicit offset starts from the full duration.
func (f *runFlags) startElapsed(cfg *config.Config) time.Duration {
	if cfg.Run.Reversed && cfg.Run.Elapsed == 0 && f.elapsed == nil {
		return cfg.Run.Duration
	}
	return cfg.Run.Elapsed
}

func newLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.New(cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logger setup failed, logging disabled: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

func logResolved(logger *zap.Logger, resolved *config.Resolved) {
	logger.Info("config resolved",
		zap.String("root", resolved.Root),
		zap.String("path", resolved.Path),
		zap.String("module_path", resolved.ModulePath),
		zap.Bool("found", resolved.Found),
	)
}
