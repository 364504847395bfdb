package remote

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts provisioning outcomes.
type Metrics struct {
	opened   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics creates the provisioner counters and registers them with reg.
// A nil reg leaves the counters unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tinkerharness",
			Subsystem: "remote",
			Name:      "connections_opened_total",
			Help:      "Connections opened and bound, by traversal source.",
		}, []string{"traversal_source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tinkerharness",
			Subsystem: "remote",
			Name:      "connection_failures_total",
			Help:      "Connection attempts that failed, by stage (open or bind).",
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.opened, m.failures)
	}
	return m
}

func (m *Metrics) connectionOpened(source string) {
	if m == nil {
		return
	}
	m.opened.WithLabelValues(source).Inc()
}

func (m *Metrics) connectionFailed(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}
