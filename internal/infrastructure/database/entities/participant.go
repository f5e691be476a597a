package entities

import (
	"time"

	"chatbot-research/experiment-api/internal/domain/participant"
)

// Participant represents the database schema for study subjects. The
// compound unique index on (external_id, study_id) is the idempotent upsert
// key: the same external id may appear across studies, never twice within
// one.
type Participant struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID            string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExternalID          string  `gorm:"type:varchar(128);uniqueIndex:idx_participant_identity;not null"`
	StudyID             string  `gorm:"type:varchar(128);uniqueIndex:idx_participant_identity;not null;default:''"`
	AssignedConditionID *string `gorm:"type:varchar(64)"`
}

// TableName specifies the table name for Participant.
func (Participant) TableName() string {
	return "participants"
}

// EtoD converts the database entity to the domain model.
func (p *Participant) EtoD() *participant.Participant {
	return &participant.Participant{
		ID:                  p.ID,
		PublicID:            p.PublicID,
		ExternalID:          p.ExternalID,
		StudyID:             p.StudyID,
		AssignedConditionID: p.AssignedConditionID,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
