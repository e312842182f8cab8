// Package metrics exposes placement counters to Prometheus. A nil *Metrics
// records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onemodel/ordinal/pkg/model/mcontainer"
)

const namespace = "ordinal"

// Outcome labels how a placement ended.
type Outcome string

const (
	OutcomeMoved  Outcome = "moved"
	OutcomeNoop   Outcome = "noop"
	OutcomeFailed Outcome = "failed"
)

// Reason labels why a container was renumbered.
type Reason string

const (
	ReasonPlacement Reason = "placement"
	ReasonManual    Reason = "manual"
)

type Metrics struct {
	placements *prometheus.CounterVec
	renumbers  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New registers the placement collectors with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_total",
			Help:      "Placements by container kind and outcome.",
		}, []string{"kind", "outcome"}),
		renumbers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renumbers_total",
			Help:      "Container renumbers by container kind and reason.",
		}, []string{"kind", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "placement_duration_seconds",
			Help:      "Time spent placing a member, transaction included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
	}
	reg.MustRegister(m.placements, m.renumbers, m.duration)
	return m
}

func (m *Metrics) ObservePlacement(kind mcontainer.Kind, outcome Outcome, took time.Duration) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(kind.String(), string(outcome)).Inc()
	m.duration.WithLabelValues(kind.String()).Observe(took.Seconds())
}

func (m *Metrics) Renumbered(kind mcontainer.Kind, reason Reason) {
	if m == nil {
		return
	}
	m.renumbers.WithLabelValues(kind.String(), string(reason)).Inc()
}

// Placements returns the counter behind one placement label pair.
func (m *Metrics) Placements(kind mcontainer.Kind, outcome Outcome) prometheus.Counter {
	return m.placements.WithLabelValues(kind.String(), string(outcome))
}

func (m *Metrics) Renumbers(kind mcontainer.Kind, reason Reason) prometheus.Counter {
	return m.renumbers.WithLabelValues(kind.String(), string(reason))
}
