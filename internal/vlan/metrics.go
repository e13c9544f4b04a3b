package vlan

import "github.com/prometheus/client_golang/prometheus"

// Drop reasons recorded on battlelan_vlan_packets_dropped_total.
const (
	dropShort        = "short"
	dropNotUDP       = "not_udp"
	dropNotBroadcast = "not_broadcast"
	dropSource       = "source"
	dropMalformed    = "malformed"
)

// Metrics holds the engine's packet counters. All fields are fed from the
// capture loop and send path; a nil *Metrics disables counting.
type Metrics struct {
	PacketsCaptured  prometheus.Counter
	PacketsForwarded prometheus.Counter
	PacketsDropped   *prometheus.CounterVec
	SendErrors       prometheus.Counter
}

// NewMetrics creates the engine counter set.
func NewMetrics() *Metrics {
	return &Metrics{
		PacketsCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "battlelan_vlan_packets_captured_total",
			Help: "Total number of datagrams delivered by the capture socket",
		}),
		PacketsForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "battlelan_vlan_packets_forwarded_total",
			Help: "Total number of rewritten datagrams sent to receivers",
		}),
		PacketsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "battlelan_vlan_packets_dropped_total",
			Help: "Total number of captured datagrams not forwarded",
		}, []string{"reason"}),
		SendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "battlelan_vlan_send_errors_total",
			Help: "Total number of failed egress sends",
		}),
	}
}

// Register registers all counters with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.PacketsCaptured, m.PacketsForwarded, m.PacketsDropped, m.SendErrors,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) captured() {
	if m != nil {
		m.PacketsCaptured.Inc()
	}
}

func (m *Metrics) forwarded() {
	if m != nil {
		m.PacketsForwarded.Inc()
	}
}

func (m *Metrics) dropped(reason string) {
	if m != nil {
		m.PacketsDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) sendError() {
	if m != nil {
		m.SendErrors.Inc()
	}
}
