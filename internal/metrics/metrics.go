package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the application. It carries its
// own registry so tests can create collectors without double registration.
type Collector struct {
	registry *prometheus.Registry

	RemindersFired prometheus.Counter
	DoseUpdates    *prometheus.CounterVec
	AIRequests     *prometheus.CounterVec
	WSClients      prometheus.Gauge
}

// NewCollector creates a metrics collector under the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	remindersFired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_fired_total",
		Help:      "Total number of dose reminders fired",
	})

	doseUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dose_updates_total",
		Help:      "Total number of dose status updates",
	}, []string{"status"})

	aiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_requests_total",
		Help:      "Total number of AI gateway requests",
	}, []string{"operation", "status"})

	wsClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Number of connected websocket clients",
	})

	registry.MustRegister(remindersFired, doseUpdates, aiRequests, wsClients)

	return &Collector{
		registry:       registry,
		RemindersFired: remindersFired,
		DoseUpdates:    doseUpdates,
		AIRequests:     aiRequests,
		WSClients:      wsClients,
	}
}

// Handler exposes the collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordAIRequest counts one gateway call by operation and outcome.
func (c *Collector) RecordAIRequest(operation string, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.AIRequests.WithLabelValues(operation, status).Inc()
}

// RecordReminder counts one fired dose reminder.
func (c *Collector) RecordReminder() {
	if c == nil {
		return
	}
	c.RemindersFired.Inc()
}

// RecordDoseUpdate counts one dose status change.
func (c *Collector) RecordDoseUpdate(status string) {
	if c == nil {
		return
	}
	c.DoseUpdates.WithLabelValues(status).Inc()
}
