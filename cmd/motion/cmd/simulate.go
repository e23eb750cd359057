package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-drift/motion/cmd/motion/internal/logging"
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

func init() {
	RegisterCommand(&Command{
		Name:  "simulate",
		Short: "Step a run with a fixed frame delta",
		Long: `Step a progress run on a simulated frame clock with a fixed frame delta
and print the fraction reported on every frame, followed by the completion.

The run is deterministic: the same flags always produce the same output.

Flags:
  --config FILE       Load configuration from FILE instead of motion.yaml
  --duration D        Run duration (e.g. 1s, 500ms)
  --elapsed D         Starting elapsed time
  --reverse           Count down toward zero
  --hz N              Frame rate; each frame advances 1/N seconds
  --trace-out FILE    Write the frame trace as JSON to FILE`,
		Usage: "motion simulate [--config FILE] [--duration D] [--elapsed D] [--reverse] [--hz N] [--trace-out FILE]",
		Run:   runSimulate,
	})
}

type simulateOptions struct {
	runFlags
	traceOut string
}

func parseSimulateArgs(args []string) (simulateOptions, error) {
	var opts simulateOptions
	for i := 0; i < len(args); i++ {
		ok, n, err := opts.parseRunFlag(args, i)
		if err != nil {
			return opts, err
		}
		if ok {
			i += n
			continue
		}
		if flagName(args[i]) == "--trace-out" {
			v, n, err := flagValue(args, i, "--trace-out")
			if err != nil {
				return opts, err
			}
			opts.traceOut = v
			i += n
			continue
		}
		return opts, fmt.Errorf("unknown argument %q", args[i])
	}
	return opts, nil
}

func runSimulate(args []string) error {
	opts, err := parseSimulateArgs(args)
	if err != nil {
		return err
	}
	resolved, err := opts.resolveConfig()
	if err != nil {
		return err
	}
	cfg := resolved.Config

	logger := newLogger(cfg)
	defer logger.Sync() //nolint:errcheck // best-effort flush
	prev := errors.SetHandler(&errors.LogHandler{Logger: logger})
	defer errors.SetHandler(prev)
	logResolved(logger, resolved)

	dt := animation.ToleranceForRate(cfg.Display.RefreshHz)
	trace := animation.NewFrameTraceBuffer(cfg.Debug.TraceCapacity, dt)
	frames := animation.NewFrameScheduler()

	runner := animation.NewProgressRunner(frames)
	runner.Tolerance = cfg.Tolerance()
	runner.Events = animation.NewMultiListener(trace, logging.EventLogger{Logger: logger})

	frame := 0
	runner.SetObserver(animation.Strong(animation.ObserverFuncs{
		OnUpdate: func(fraction float64) {
			fmt.Fprintf(stdout, "frame %4d  fraction %.4f\n", frame, fraction)
		},
		OnComplete: func(finished bool) {
			fmt.Fprintf(stdout, "complete    finished=%t after %d frames\n", finished, frame)
		},
	}))

	direction := "forward"
	if cfg.Run.Reversed {
		direction = "reversed"
	}
	fmt.Fprintf(stdout, "simulating %v %s run at %g Hz (dt %v, tolerance %v)\n",
		cfg.Run.Duration, direction, cfg.Display.RefreshHz, dt, runner.Tolerance)
	fmt.Fprintln(stdout, resolved.Describe())

	if err := runner.Start(opts.startElapsed(cfg), cfg.Run.Duration, cfg.Run.Reversed); err != nil {
		return err
	}

	// A run always reaches a boundary; the cap only guards against a
	// frame delta too small to make progress.
	maxFrames := int(cfg.Run.Duration/dt) + int(opts.startElapsed(cfg)/dt) + 2
	for runner.IsRunning() {
		if frame >= maxFrames {
			runner.Stop()
			return fmt.Errorf("run did not complete within %d frames", maxFrames)
		}
		frame++
		frames.Step(dt)
	}

	if opts.traceOut != "" {
		if err := writeTrace(opts.traceOut, trace); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "trace written to %s\n", opts.traceOut)
	}
	return nil
}

func writeTrace(path string, trace *animation.FrameTraceBuffer) error {
	data, err := json.MarshalIndent(trace.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return nil
}
