package tcp

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes Prometheus instrumentation for a [Sender]/[Receiver]
// pair. A nil *Metrics is valid and simply disables instrumentation.
type Metrics struct {
	retransmissions prometheus.Counter
	rtoMillis       prometheus.Gauge
	bytesInFlight   prometheus.Gauge
	segmentsSent    prometheus.Counter
	segmentsRecv    prometheus.Counter
	bytesReceived   prometheus.Counter
}

// NewMetrics registers and returns a Metrics bound to reg, labeled with
// id so multiple connections sharing a registry remain distinguishable.
func NewMetrics(reg prometheus.Registerer, id string) *Metrics {
	labels := prometheus.Labels{"conn": id}
	m := &Metrics{
		retransmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "minnet",
			Subsystem:   "tcp",
			Name:        "retransmissions_total",
			Help:        "Total retransmission timeouts that backed off the RTO; zero-window probe retransmissions are not counted.",
			ConstLabels: labels,
		}),
		rtoMillis: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "minnet",
			Subsystem:   "tcp",
			Name:        "rto_milliseconds",
			Help:        "Current retransmission timeout in milliseconds.",
			ConstLabels: labels,
		}),
		bytesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "minnet",
			Subsystem:   "tcp",
			Name:        "bytes_in_flight",
			Help:        "Sequence numbers outstanding (sent, not yet cumulatively acked).",
			ConstLabels: labels,
		}),
		segmentsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "minnet",
			Subsystem:   "tcp",
			Name:        "segments_sent_total",
			Help:        "Segments emitted by the sender, including retransmissions.",
			ConstLabels: labels,
		}),
		segmentsRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "minnet",
			Subsystem:   "tcp",
			Name:        "segments_received_total",
			Help:        "Segments processed by the receiver.",
			ConstLabels: labels,
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "minnet",
			Subsystem:   "tcp",
			Name:        "payload_bytes_received_total",
			Help:        "Payload bytes accepted by the receiver across all segments.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.retransmissions, m.rtoMillis, m.bytesInFlight, m.segmentsSent, m.segmentsRecv, m.bytesReceived)
	}
	return m
}

func (m *Metrics) observeReceive(msg SenderMessage) {
	m.segmentsRecv.Inc()
	m.bytesReceived.Add(float64(len(msg.Payload)))
}

func (m *Metrics) observeSend(msg SenderMessage) {
	m.segmentsSent.Inc()
}

func (m *Metrics) observeOutstanding(bytesInFlight uint64) {
	m.bytesInFlight.Set(float64(bytesInFlight))
}

func (m *Metrics) observeRTO(rtoMs uint64) {
	m.rtoMillis.Set(float64(rtoMs))
}

func (m *Metrics) observeRetransmission() {
	m.retransmissions.Inc()
}
