package bridge

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts bridged frames.
type Metrics struct {
	Received  *prometheus.CounterVec
	Truncated prometheus.Counter
	Sent      *prometheus.CounterVec
	Errors    *prometheus.CounterVec
	Stalls    prometheus.Counter
}

// NewMetrics creates Metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serialpacket",
			Name:      "frames_received_total",
			Help:      "Frames received from the link.",
		}, []string{"mode"}),
		Truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "serialpacket",
			Name:      "frames_truncated_total",
			Help:      "Frames received larger than the receive buffer.",
		}),
		Sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serialpacket",
			Name:      "frames_sent_total",
			Help:      "Frames sent to the link.",
		}, []string{"mode"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serialpacket",
			Name:      "errors_total",
			Help:      "Errors publishing or sending frames.",
		}, []string{"op"}),
		Stalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "serialpacket",
			Name:      "decoder_stalls_total",
			Help:      "Partial frames dropped after stall timeout.",
		}),
	}
	reg.MustRegister(m.Received, m.Truncated, m.Sent, m.Errors, m.Stalls)
	return m
}

func modeOf(f *Frame) string {
	if f.Text {
		return "text"
	}
	return "binary"
}

func (m *Metrics) received(f *Frame) {
	if m == nil {
		return
	}
	m.Received.WithLabelValues(modeOf(f)).Inc()
	if f.Truncated {
		m.Truncated.Inc()
	}
}

func (m *Metrics) sent(f *Frame) {
	if m != nil {
		m.Sent.WithLabelValues(modeOf(f)).Inc()
	}
}

func (m *Metrics) failed(op string) {
	if m != nil {
		m.Errors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) stalled() {
	if m != nil {
		m.Stalls.Inc()
	}
}
