package entities

import (
	"time"

	"chatbot-research/experiment-api/internal/domain/audit"
)

// Event is the append-only audit record. Session and participant refs are
// nullable so pre-session errors can still be recorded.
type Event struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_event_time"`

	ChatSessionID *string `gorm:"type:varchar(64);index:idx_event_session"`
	ParticipantID *string `gorm:"type:varchar(64)"`
	EventType     string  `gorm:"type:varchar(64);not null"`
	Severity      string  `gorm:"type:varchar(16);not null;default:'info'"`
	Description   string  `gorm:"type:text;not null"`
	Metadata      JSONMap `gorm:"type:jsonb"`
}

// TableName specifies the table name for Event.
func (Event) TableName() string {
	return "events"
}

// EtoD converts the database entity to the domain model.
func (e *Event) EtoD() *audit.Event {
	return &audit.Event{
		ID:            e.ID,
		SessionID:     e.ChatSessionID,
		ParticipantID: e.ParticipantID,
		Type:          e.EventType,
		Severity:      audit.Severity(e.Severity),
		Description:   e.Description,
		Metadata:      e.Metadata,
		CreatedAt:     e.CreatedAt,
	}
}

// NewSchemaEvent creates a database entity from the domain model.
func NewSchemaEvent(e *audit.Event) *Event {
	return &Event{
		ChatSessionID: e.SessionID,
		ParticipantID: e.ParticipantID,
		EventType:     e.Type,
		Severity:      string(e.Severity),
		Description:   e.Description,
		Metadata:      JSONMap(e.Metadata),
	}
}
