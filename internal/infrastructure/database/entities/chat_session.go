package entities

import (
	"time"

	"chatbot-research/experiment-api/internal/domain/session"
)

// ChatSession represents the database schema for conversation sessions. The
// public id is caller-assigned (a UUID string, not a store-generated key) so
// it is safe to expose to the frontend.
type ChatSession struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID          string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	ParticipantID     string     `gorm:"type:varchar(64);index:idx_session_participant;not null"`
	ExperimentID      string     `gorm:"type:varchar(64);index:idx_session_experiment;not null"`
	ConditionID       string     `gorm:"type:varchar(64);index;not null"`
	QRPre             *string    `gorm:"type:varchar(128)"`
	QRPost            *string    `gorm:"type:varchar(128)"`
	ExternalSessionID *string    `gorm:"type:varchar(128)"`
	Status            string     `gorm:"type:varchar(20);index:idx_session_status;not null;default:'active'"`
	TurnCount         int        `gorm:"not null;default:0"`
	StartedAt         time.Time  `gorm:"not null"`
	EndedAt           *time.Time `gorm:"type:timestamp"`
	ClientMetadata    JSONMap    `gorm:"type:jsonb"`
}

// TableName specifies the table name for ChatSession.
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// EtoD converts the database entity to the domain model.
func (s *ChatSession) EtoD() *session.Session {
	return &session.Session{
		ID:                s.ID,
		PublicID:          s.PublicID,
		ParticipantID:     s.ParticipantID,
		ExperimentID:      s.ExperimentID,
		ConditionID:       s.ConditionID,
		QRPre:             s.QRPre,
		QRPost:            s.QRPost,
		ExternalSessionID: s.ExternalSessionID,
		Status:            session.Status(s.Status),
		TurnCount:         s.TurnCount,
		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
		ClientMetadata:    s.ClientMetadata,
	}
}

// NewSchemaChatSession creates a database entity from the domain model.
func NewSchemaChatSession(s *session.Session) *ChatSession {
	return &ChatSession{
		ID:                s.ID,
		PublicID:          s.PublicID,
		ParticipantID:     s.ParticipantID,
		ExperimentID:      s.ExperimentID,
		ConditionID:       s.ConditionID,
		QRPre:             s.QRPre,
		QRPost:            s.QRPost,
		ExternalSessionID: s.ExternalSessionID,
		Status:            string(s.Status),
		TurnCount:         s.TurnCount,
		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
		ClientMetadata:    JSONMap(s.ClientMetadata),
	}
}
