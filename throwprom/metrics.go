// Package throwprom exports capture outcomes of a throwctx.Hub as Prometheus
// metrics. Wire it through the hub's observer hook:
//
//	m := throwprom.NewMetrics("myapp")
//	m.MustRegister(prometheus.DefaultRegisterer)
//	throwctx.EnsureInitialized(throwctx.WithObserver(m.Observer()))
package throwprom

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	throwctx "github.com/xgx-io/xgx-throwctx"
)

// DefaultNamespace is used when NewMetrics gets an empty namespace.
const DefaultNamespace = "throwctx"

var outcomes = []throwctx.Outcome{
	throwctx.OutcomeCaptured,
	throwctx.OutcomeDuplicate,
	throwctx.OutcomeUnsupported,
	throwctx.OutcomeFailed,
	throwctx.OutcomeEvicted,
	throwctx.OutcomeExtended,
}

// Metrics holds the collectors fed by one hub.
type Metrics struct {
	// outcomes counts raise/evict outcomes, labeled by outcome name.
	outcomes *prometheus.CounterVec

	// live tracks snapshots currently held: +1 per capture, -1 per eviction.
	live prometheus.Gauge
}

// NewMetrics builds unregistered collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "capture",
				Name:      "outcomes_total",
				Help:      "Number of raise and eviction outcomes by type",
			},
			[]string{"outcome"},
		),
		live: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "live_entries",
				Help:      "Error instances currently holding a snapshot",
			},
		),
	}
	// Export every label from the start so rate() works before the first event.
	for _, o := range outcomes {
		m.outcomes.WithLabelValues(o.String())
	}
	return m
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.outcomes, m.live} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register collector: %w", err)
		}
	}
	return nil
}

// MustRegister is Register that panics on failure. Call it during
// application initialization.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.outcomes, m.live)
}

// Observe records one outcome.
func (m *Metrics) Observe(o throwctx.Outcome) {
	m.outcomes.WithLabelValues(o.String()).Inc()
	switch o {
	case throwctx.OutcomeCaptured:
		m.live.Inc()
	case throwctx.OutcomeEvicted:
		m.live.Dec()
	}
}

// Observer adapts m for throwctx.WithObserver.
func (m *Metrics) Observer() throwctx.Observer {
	return m.Observe
}
