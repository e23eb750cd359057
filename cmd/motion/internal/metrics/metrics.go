// Package metrics exposes Prometheus collectors for progress runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-drift/motion/pkg/animation"
)

// Outcome labels for motion_runs_finished_total.
const (
	OutcomeCompleted = "completed"
	OutcomeReversed  = "reversed"
	OutcomeStopped   = "stopped"
)

// Collector records run events as Prometheus metrics. It implements
// animation.RunListener.
type Collector struct {
	runsStarted  prometheus.Counter
	runsFinished *prometheus.CounterVec
	frames       prometheus.Counter
	frameDelta   prometheus.Histogram
	activeRuns   prometheus.Gauge
}

// NewCollector registers the motion collectors with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		runsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "motion_runs_started_total",
			Help: "Total number of progress runs started.",
		}),
		runsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "motion_runs_finished_total",
			Help: "Total number of progress runs that ended, labeled by outcome.",
		}, []string{"outcome"}),
		frames: factory.NewCounter(prometheus.CounterOpts{
			Name: "motion_frames_total",
			Help: "Total number of frames processed by progress runners.",
		}),
		frameDelta: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "motion_frame_delta_seconds",
			Help:    "Histogram of frame deltas seen by progress runners.",
			Buckets: []float64{0.004, 0.008, 0.0167, 0.025, 0.033, 0.05, 0.1},
		}),
		activeRuns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "motion_active_runs",
			Help: "Number of progress runs currently running.",
		}),
	}
}

// OnRunEvent implements animation.RunListener.
func (c *Collector) OnRunEvent(event animation.RunEvent) {
	switch event.Kind {
	case animation.RunStarted:
		c.runsStarted.Inc()
		c.activeRuns.Inc()
	case animation.RunUpdated:
		c.observeFrame(event)
	case animation.RunCompleted:
		c.observeFrame(event)
		outcome := OutcomeCompleted
		if !event.Finished {
			outcome = OutcomeReversed
		}
		c.runsFinished.WithLabelValues(outcome).Inc()
		c.activeRuns.Dec()
	case animation.RunStopped:
		c.runsFinished.WithLabelValues(OutcomeStopped).Inc()
		c.activeRuns.Dec()
	}
}

func (c *Collector) observeFrame(event animation.RunEvent) {
	c.frames.Inc()
	c.frameDelta.Observe(event.Delta.Seconds())
}

// Handler returns an http.Handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
