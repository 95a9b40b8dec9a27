package admin

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"lorastat-sim/internal/stats"
)

// MetricsCollector counts packet events as Prometheus metrics. It plugs into
// the simulator as an event writer.
type MetricsCollector struct {
	sent      *prometheus.CounterVec
	delivered prometheus.Counter
	lost      *prometheus.CounterVec
	acks      *prometheus.CounterVec
}

// NewMetricsCollector creates the collector and registers its metrics.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	c := &MetricsCollector{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lorastat_packets_sent_total",
			Help: "Uplink transmission attempts by application class.",
		}, []string{"class"}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lorastat_packets_delivered_total",
			Help: "Packets received by at least one gateway.",
		}),
		lost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lorastat_packets_lost_total",
			Help: "Per-receiver packet losses by cause and rate setting.",
		}, []string{"cause", "rate"}),
		acks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lorastat_acknowledgments_total",
			Help: "Acknowledgment outcomes in confirmed mode.",
		}, []string{"success"}),
	}
	reg.MustRegister(c.sent, c.delivered, c.lost, c.acks)
	return c
}

// WriteEvent implements sim.EventWriter.
func (c *MetricsCollector) WriteEvent(e stats.Event) error {
	switch e.Type {
	case stats.EventSent:
		c.sent.WithLabelValues(e.Class).Inc()
	case stats.EventDelivered:
		c.delivered.Inc()
	case stats.EventLostInterference:
		c.lost.WithLabelValues("interference", strconv.Itoa(e.RateIdx)).Inc()
	case stats.EventLostUnderSensitivity:
		c.lost.WithLabelValues("under_sensitivity", strconv.Itoa(e.RateIdx)).Inc()
	case stats.EventLostNoReceivers:
		c.lost.WithLabelValues("no_receivers", strconv.Itoa(e.RateIdx)).Inc()
	case stats.EventLostBusy:
		c.lost.WithLabelValues("busy", strconv.Itoa(e.RateIdx)).Inc()
	case stats.EventAcknowledgment:
		c.acks.WithLabelValues(strconv.FormatBool(e.Success)).Inc()
	}
	return nil
}
