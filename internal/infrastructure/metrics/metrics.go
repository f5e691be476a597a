package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Experiment-API Metrics
var (
	SessionsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "experiment_api",
			Name:      "sessions_started_total",
			Help:      "Sessions created, labeled by experiment",
		},
		[]string{"experiment_id"},
	)

	SessionsEndedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "experiment_api",
			Name:      "sessions_ended_total",
			Help:      "Sessions terminated, labeled by experiment",
		},
		[]string{"experiment_id"},
	)

	SessionsAbandonedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "experiment_api",
			Name:      "sessions_abandoned_total",
			Help:      "Idle sessions swept to abandoned by the reaper",
		},
	)

	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "experiment_api",
			Name:      "turns_total",
			Help:      "Conversation turns processed",
		},
		[]string{"status"},
	)

	GatewayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "chatbot",
			Subsystem: "experiment_api",
			Name:      "gateway_request_duration_seconds",
			Help:      "Completion gateway call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	GatewayTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "experiment_api",
			Name:      "gateway_tokens_total",
			Help:      "Token usage reported by the completion backend",
		},
		[]string{"kind"},
	)

	AuditEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "experiment_api",
			Name:      "audit_events_total",
			Help:      "Audit events appended",
		},
		[]string{"event_type", "status"},
	)

	ExportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "experiment_api",
			Name:      "export_rows_total",
			Help:      "Rows returned by admin exports",
		},
		[]string{"table"},
	)
)

// RecordTurn records one processed turn.
func RecordTurn(status string, gatewaySeconds float64) {
	TurnsTotal.WithLabelValues(status).Inc()
	if gatewaySeconds > 0 {
		GatewayDuration.Observe(gatewaySeconds)
	}
}

// RecordTokenUsage records gateway token counters.
func RecordTokenUsage(prompt, completion int) {
	if prompt > 0 {
		GatewayTokensTotal.WithLabelValues("prompt").Add(float64(prompt))
	}
	if completion > 0 {
		GatewayTokensTotal.WithLabelValues("completion").Add(float64(completion))
	}
}

// RecordAuditEvent records an audit append attempt.
func RecordAuditEvent(eventType, status string) {
	AuditEventsTotal.WithLabelValues(eventType, status).Inc()
}

// RecordExport records rows returned by an admin export.
func RecordExport(table string, rows int) {
	ExportRowsTotal.WithLabelValues(table).Add(float64(rows))
}
