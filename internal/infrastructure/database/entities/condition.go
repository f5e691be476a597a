package entities

import (
	"time"

	"chatbot-research/experiment-api/internal/domain/condition"
)

// Condition represents the database schema for experiment arms.
type Condition struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID          string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExperimentID      string  `gorm:"type:varchar(64);index:idx_condition_experiment_active;not null"`
	Name              string  `gorm:"type:varchar(128);not null"`
	Description       *string `gorm:"type:text"`
	SystemPrompt      string  `gorm:"type:text;not null"`
	PromptFingerprint string  `gorm:"type:varchar(64);index;not null"`
	Model             string  `gorm:"type:varchar(128);not null"`
	Temperature       float64 `gorm:"not null;default:0.7"`
	MaxTokens         int     `gorm:"not null;default:1024"`
	IsActive          bool    `gorm:"index:idx_condition_experiment_active;not null;default:true"`
}

// TableName specifies the table name for Condition.
func (Condition) TableName() string {
	return "conditions"
}

// EtoD converts the database entity to the domain model.
func (c *Condition) EtoD() *condition.Condition {
	return &condition.Condition{
		ID:                c.ID,
		PublicID:          c.PublicID,
		ExperimentID:      c.ExperimentID,
		Name:              c.Name,
		Description:       c.Description,
		SystemPrompt:      c.SystemPrompt,
		PromptFingerprint: c.PromptFingerprint,
		Model:             c.Model,
		Temperature:       c.Temperature,
		MaxTokens:         c.MaxTokens,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// NewSchemaCondition creates a database entity from the domain model. The
// prompt fingerprint is recomputed so it can never drift from the prompt
// text.
func NewSchemaCondition(c *condition.Condition) *Condition {
	return &Condition{
		ID:                c.ID,
		PublicID:          c.PublicID,
		ExperimentID:      c.ExperimentID,
		Name:              c.Name,
		Description:       c.Description,
		SystemPrompt:      c.SystemPrompt,
		PromptFingerprint: condition.Fingerprint(c.SystemPrompt),
		Model:             c.Model,
		Temperature:       c.Temperature,
		MaxTokens:         c.MaxTokens,
		IsActive:          c.IsActive,
	}
}
