package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline counters. A dedicated registry keeps tests and
// repeated wiring free of duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	RecordsProcessed  *prometheus.CounterVec
	AnomaliesDetected prometheus.Counter
	PublishFailures   prometheus.Counter
	DroppedLines      prometheus.Counter
	ActiveSessions    prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datahub_records_processed_total",
			Help: "Sensor records accepted into the pipeline, by ingress channel.",
		}, []string{"channel"}),
		AnomaliesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datahub_anomalies_detected_total",
			Help: "Records flagged anomalous by the analyzer.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datahub_publish_failures_total",
			Help: "Records persisted but not handed to the message bus.",
		}),
		DroppedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datahub_wireless_dropped_lines_total",
			Help: "Wireless session lines matching neither wire format.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "datahub_wireless_active_sessions",
			Help: "Currently connected wireless clients.",
		}),
	}

	m.registry.MustRegister(
		m.RecordsProcessed,
		m.AnomaliesDetected,
		m.PublishFailures,
		m.DroppedLines,
		m.ActiveSessions,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
