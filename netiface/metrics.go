package netiface

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/soypat/minnet/arp"
)

// Metrics exposes Prometheus instrumentation for an [Interface], composing
// an [arp.CacheMetrics] for its ARP cache.
type Metrics struct {
	cache     *arp.CacheMetrics
	queued    prometheus.Counter
	throttled prometheus.Counter
}

// NewMetrics registers and returns Metrics bound to reg, labeled with
// iface so multiple interfaces sharing a registry stay distinguishable.
func NewMetrics(reg prometheus.Registerer, iface string) *Metrics {
	m := &Metrics{
		cache: arp.NewCacheMetrics(reg, iface),
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "minnet",
			Subsystem:   "netiface",
			Name:        "frames_queued_total",
			Help:        "Frames enqueued for transmission, including ARP requests and replies.",
			ConstLabels: prometheus.Labels{"iface": iface},
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "minnet",
			Subsystem:   "netiface",
			Name:        "arp_requests_suppressed_total",
			Help:        "ARP requests suppressed by the per-target throttle.",
			ConstLabels: prometheus.Labels{"iface": iface},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queued, m.throttled)
	}
	return m
}

func (m *Metrics) observeQueued() { m.queued.Inc() }

func (m *Metrics) observeThrottled() { m.throttled.Inc() }
