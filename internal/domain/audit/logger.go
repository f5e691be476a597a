package audit

import (
	"context"

	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/infrastructure/metrics"
)

// Logger is a best-effort sink for audit events. A failed append is reported
// to the process log and a metric, never to the calling operation.
type Logger struct {
	events Repository
	log    zerolog.Logger
}

// NewLogger wires the audit sink.
func NewLogger(events Repository, log zerolog.Logger) *Logger {
	return &Logger{
		events: events,
		log:    log.With().Str("component", "audit").Logger(),
	}
}

// Entry describes an event to record.
type Entry struct {
	Type          string
	Severity      Severity
	Description   string
	SessionID     *string
	ParticipantID *string
	Metadata      map[string]any
}

// Log appends the event, swallowing any store failure.
func (l *Logger) Log(ctx context.Context, entry Entry) {
	severity := entry.Severity
	if severity == "" {
		severity = SeverityInfo
	}

	err := l.events.Append(ctx, &Event{
		SessionID:     entry.SessionID,
		ParticipantID: entry.ParticipantID,
		Type:          entry.Type,
		Severity:      severity,
		Description:   entry.Description,
		Metadata:      entry.Metadata,
	})
	if err != nil {
		metrics.RecordAuditEvent(entry.Type, "failed")
		l.log.Warn().Err(err).Str("event_type", entry.Type).Msg("audit append failed")
		return
	}
	metrics.RecordAuditEvent(entry.Type, "ok")
}
