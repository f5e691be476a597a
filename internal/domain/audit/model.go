package audit

import (
	"context"
	"time"
)

// Severity grades an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityFatal   Severity = "fatal"
)

// Well-known event types recorded around lifecycle milestones.
const (
	TypeSessionStart = "session_start"
	TypeSessionEnd   = "session_end"
	TypeError        = "error"
)

// Event is one append-only audit record. Session and participant linkage is
// optional so pre-session failures can still be recorded.
type Event struct {
	ID            uint
	SessionID     *string
	ParticipantID *string
	Type          string
	Severity      Severity
	Description   string
	Metadata      map[string]any
	CreatedAt     time.Time
}

// Repository appends audit events.
type Repository interface {
	Append(ctx context.Context, e *Event) error
	ListBySession(ctx context.Context, sessionID string) ([]Event, error)
}
