package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds command dispatch metrics.
type Metrics struct {
	commandsTotal *prometheus.CounterVec
	commandDur    *prometheus.HistogramVec
}

// NewMetrics registers command metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ctrld_commands_total",
				Help: "Commands dispatched, labeled by verb and outcome kind.",
			},
			[]string{"verb", "outcome"},
		),
		commandDur: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ctrld_command_duration_seconds",
				Help:    "Command dispatch duration in seconds, labeled by verb.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"verb"},
		),
	}
}

// observe records one dispatched command. Safe on a nil receiver so the
// router works without metrics wired.
func (m *Metrics) observe(verb string, kind OutcomeKind, dur time.Duration) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(verb, string(kind)).Inc()
	m.commandDur.WithLabelValues(verb).Observe(dur.Seconds())
}
