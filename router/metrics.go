package router

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes Prometheus instrumentation for a [Router]. A nil
// *Metrics is valid and disables instrumentation.
type Metrics struct {
	forwarded prometheus.Counter
	dropped   *prometheus.CounterVec
}

// NewMetrics registers and returns Metrics bound to reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		forwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minnet",
			Subsystem: "router",
			Name:      "datagrams_forwarded_total",
			Help:      "Datagrams successfully forwarded to an outbound interface.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minnet",
			Subsystem: "router",
			Name:      "datagrams_dropped_total",
			Help:      "Datagrams dropped, labeled by reason.",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.forwarded, m.dropped)
	}
	return m
}

func (m *Metrics) observeForwarded() { m.forwarded.Inc() }

func (m *Metrics) observeDropped(reason string) { m.dropped.WithLabelValues(reason).Inc() }
