package arp

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics exposes Prometheus instrumentation for a [Cache]. A nil
// *CacheMetrics is valid and disables instrumentation.
type CacheMetrics struct {
	size         prometheus.Gauge
	requestsSent prometheus.Counter
}

// NewCacheMetrics registers and returns CacheMetrics bound to reg, labeled
// with iface so multiple interfaces sharing a registry stay distinguishable.
func NewCacheMetrics(reg prometheus.Registerer, iface string) *CacheMetrics {
	labels := prometheus.Labels{"iface": iface}
	m := &CacheMetrics{
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "minnet",
			Subsystem:   "arp",
			Name:        "cache_entries",
			Help:        "Live protocol-to-hardware mappings held by the cache.",
			ConstLabels: labels,
		}),
		requestsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "minnet",
			Subsystem:   "arp",
			Name:        "requests_sent_total",
			Help:        "ARP requests actually transmitted, after throttling.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.size, m.requestsSent)
	}
	return m
}

func (m *CacheMetrics) observeSize(n int)   { m.size.Set(float64(n)) }
func (m *CacheMetrics) observeRequestSent() { m.requestsSent.Inc() }
