package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	flushes  *prometheus.CounterVec
	loads    *prometheus.CounterVec
	sessions prometheus.Gauge
}

// newMetrics registers the cache collectors on reg; a nil reg keeps them
// unregistered but usable.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opening_tree",
			Subsystem: "session_cache",
			Name:      "flushes_total",
			Help:      "Durable writes by result.",
		}, []string{"result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opening_tree",
			Subsystem: "session_cache",
			Name:      "cold_loads_total",
			Help:      "Durable reads on cold start by result.",
		}, []string{"result"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "opening_tree",
			Subsystem: "session_cache",
			Name:      "sessions",
			Help:      "Registered sessions.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.flushes, m.loads, m.sessions)
	}
	return m
}
