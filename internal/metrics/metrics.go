package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments exposed by the watcher.
type Metrics struct {
	MessagesReceivedTotal prometheus.Counter
	MessagesArchivedTotal prometheus.Counter
	MessagesBridgedTotal  prometheus.Counter
	DedupHitsTotal        prometheus.Counter
	StreamErrorsTotal     prometheus.Counter
	ReconnectsTotal       prometheus.Counter

	RedisOperationErrorsTotal prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	m := &Metrics{
		MessagesReceivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_messages_received_total",
			Help: "Total number of messages received on subscriptions",
		}),
		MessagesArchivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_messages_archived_total",
			Help: "Total number of messages written to the archive",
		}),
		MessagesBridgedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_messages_bridged_total",
			Help: "Total number of messages republished to Redis",
		}),
		DedupHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_dedup_hits_total",
			Help: "Total number of messages suppressed by deduplication",
		}),
		StreamErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_stream_errors_total",
			Help: "Total number of subscription stream failures",
		}),
		ReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_reconnects_total",
			Help: "Total number of subscription reconnect attempts",
		}),
		RedisOperationErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_redis_operation_errors_total",
			Help: "Total number of Redis operation errors",
		}),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.MessagesReceivedTotal,
		m.MessagesArchivedTotal,
		m.MessagesBridgedTotal,
		m.DedupHitsTotal,
		m.StreamErrorsTotal,
		m.ReconnectsTotal,
		m.RedisOperationErrorsTotal,
	)

	return m
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
