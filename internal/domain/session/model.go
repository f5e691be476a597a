package session

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the one-directional session lifecycle.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Session is one conversation instance. The public ID is caller-assigned and
// unguessable so it is safe to hand to the frontend; the bound condition
// never changes for the session's lifetime.
type Session struct {
	ID                uint
	PublicID          string
	ParticipantID     string
	ExperimentID      string
	ConditionID       string
	QRPre             *string
	QRPost            *string
	ExternalSessionID *string
	Status            Status
	TurnCount         int
	StartedAt         time.Time
	EndedAt           *time.Time
	ClientMetadata    map[string]any
}

// NewPublicID allocates a fresh unguessable session identifier.
func NewPublicID() string {
	return uuid.NewString()
}
