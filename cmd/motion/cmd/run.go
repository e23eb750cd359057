package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/go-drift/motion/cmd/motion/internal/debugserver"
	"github.com/go-drift/motion/cmd/motion/internal/logging"
	"github.com/go-drift/motion/cmd/motion/internal/metrics"
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run in real time with a progress bar",
		Long: `Run a progress run on a real-time display link and draw a text
progress bar until the run reaches its boundary. Press Ctrl-C to stop early.

Flags:
  --config FILE       Load configuration from FILE instead of motion.yaml
  --duration D        Run duration (e.g. 1s, 500ms)
  --elapsed D         Starting elapsed time
  --reverse           Count down toward zero
  --hz N              Display link refresh rate
  --debug-addr ADDR   Serve /health, /frames, /runner and /metrics on ADDR`,
		Usage: "motion run [--config FILE] [--duration D] [--elapsed D] [--reverse] [--hz N] [--debug-addr ADDR]",
		Run:   runRun,
	})
}

const progressBarWidth = 40

type runOptions struct {
	runFlags
	debugAddr string
}

func parseRunArgs(args []string) (runOptions, error) {
	var opts runOptions
	for i := 0; i < len(args); i++ {
		ok, n, err := opts.parseRunFlag(args, i)
		if err != nil {
			return opts, err
		}
		if ok {
			i += n
			continue
		}
		if flagName(args[i]) == "--debug-addr" {
			v, n, err := flagValue(args, i, "--debug-addr")
			if err != nil {
				return opts, err
			}
			opts.debugAddr = v
			i += n
			continue
		}
		return opts, fmt.Errorf("unknown argument %q", args[i])
	}
	return opts, nil
}

func runRun(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	resolved, err := opts.resolveConfig()
	if err != nil {
		return err
	}
	cfg := resolved.Config
	if opts.debugAddr == "" {
		opts.debugAddr = cfg.Debug.Addr
	}

	logger := newLogger(cfg)
	defer logger.Sync() //nolint:errcheck // best-effort flush
	prev := errors.SetHandler(&errors.LogHandler{Logger: logger})
	defer errors.SetHandler(prev)
	logResolved(logger, resolved)
	fmt.Fprintln(stdout, resolved.Describe())

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	link := animation.NewDisplayLink(cfg.Display.RefreshHz)
	trace := animation.NewFrameTraceBuffer(cfg.Debug.TraceCapacity, 2*link.Interval())
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	runner := animation.NewProgressRunner(link.Source())
	runner.Tolerance = cfg.Tolerance()
	runner.Events = animation.NewMultiListener(trace, collector, logging.EventLogger{Logger: logger})

	done := make(chan bool, 1)
	runner.SetObserver(animation.Strong(animation.ObserverFuncs{
		OnUpdate: func(fraction float64) {
			fmt.Fprintf(stdout, "\r%s", renderProgressBar(fraction, progressBarWidth))
		},
		OnComplete: func(finished bool) {
			final := 0.0
			if finished {
				final = 1
			}
			fmt.Fprintf(stdout, "\r%s\n", renderProgressBar(final, progressBarWidth))
			done <- finished
		},
	}))

	linkCtx, stopLink := context.WithCancel(context.Background())
	defer stopLink()
	linkErr := make(chan error, 1)
	go func() { linkErr <- link.Run(linkCtx) }()

	if opts.debugAddr != "" {
		server := debugserver.New(debugserver.Options{
			Trace:    trace,
			Status:   dispatchedStatus(linkCtx, link, runner),
			Gatherer: registry,
			Logger:   logger,
		})
		addr, err := server.Start(opts.debugAddr)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "debug server on http://%s\n", addr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				logger.Warn("debug server shutdown", zap.Error(err))
			}
		}()
	}

	// Start on the frame goroutine, which owns the runner from here on
	startErr := make(chan error, 1)
	elapsed := opts.startElapsed(cfg)
	link.Dispatch(func() {
		startErr <- runner.Start(elapsed, cfg.Run.Duration, cfg.Run.Reversed)
	})
	if err := <-startErr; err != nil {
		return err
	}

	select {
	case finished := <-done:
		fmt.Fprintf(stdout, "complete finished=%t\n", finished)
	case <-sigCtx.Done():
		stopped := make(chan animation.RunnerSnapshot, 1)
		link.Dispatch(func() {
			runner.Stop()
			stopped <- runner.Snapshot()
		})
		snap := <-stopped
		fmt.Fprintf(stdout, "\nstopped at %.1f%%\n", snap.Fraction*100)
	case err := <-linkErr:
		return fmt.Errorf("display link stopped: %w", err)
	}

	stopLink()
	if err := <-linkErr; err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// dispatchedStatus reads the runner snapshot on the frame goroutine.
func dispatchedStatus(linkCtx context.Context, link *animation.DisplayLink, runner *animation.ProgressRunner) debugserver.StatusFunc {
	return func(ctx context.Context) (animation.RunnerSnapshot, error) {
		result := make(chan animation.RunnerSnapshot, 1)
		link.Dispatch(func() { result <- runner.Snapshot() })
		select {
		case snap := <-result:
			return snap, nil
		case <-ctx.Done():
			return animation.RunnerSnapshot{}, ctx.Err()
		case <-linkCtx.Done():
			return animation.RunnerSnapshot{}, stderrors.New("display link stopped")
		}
	}
}

// renderProgressBar draws fraction as a fixed-width bar with a percentage.
// Fractions outside [0, 1] are clamped.
func renderProgressBar(fraction float64, width int) string {
	fraction = math.Max(0, math.Min(1, fraction))
	filled := int(math.Round(fraction * float64(width)))
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("#", filled),
		strings.Repeat(".", width-filled),
		fraction*100)
}
