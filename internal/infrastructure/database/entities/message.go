package entities

import (
	"time"

	"gorm.io/datatypes"

	"chatbot-research/experiment-api/internal/domain/chat"
)

// Message stores one utterance per row. The condition snapshot columns are
// deliberately denormalized so each row is self-describing for flat export
// even if the condition is edited later.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	ChatSessionID string `gorm:"type:varchar(64);index:idx_message_session_turn,priority:1;not null"`
	TurnIndex     int    `gorm:"index:idx_message_session_turn,priority:2;not null"`
	Role          string `gorm:"type:varchar(16);not null"`
	Text          string `gorm:"type:text;not null"`

	ConditionID       string  `gorm:"type:varchar(64);not null"`
	PromptFingerprint string  `gorm:"type:varchar(64);index;not null"`
	Model             string  `gorm:"type:varchar(128);not null"`
	Temperature       float64 `gorm:"not null"`
	MaxTokens         int     `gorm:"not null"`

	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int

	Metadata datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts the database entity to the domain model.
func (m *Message) EtoD() *chat.Message {
	return &chat.Message{
		ID:                m.ID,
		SessionID:         m.ChatSessionID,
		TurnIndex:         m.TurnIndex,
		Role:              chat.Role(m.Role),
		Text:              m.Text,
		CreatedAt:         m.CreatedAt,
		ConditionID:       m.ConditionID,
		PromptFingerprint: m.PromptFingerprint,
		Model:             m.Model,
		Temperature:       m.Temperature,
		MaxTokens:         m.MaxTokens,
		PromptTokens:      m.PromptTokens,
		CompletionTokens:  m.CompletionTokens,
		TotalTokens:       m.TotalTokens,
		Metadata:          jsonToMap(m.Metadata),
	}
}

// NewSchemaMessage creates a database entity from the domain model.
func NewSchemaMessage(m *chat.Message) *Message {
	return &Message{
		ID:                m.ID,
		CreatedAt:         m.CreatedAt,
		ChatSessionID:     m.SessionID,
		TurnIndex:         m.TurnIndex,
		Role:              string(m.Role),
		Text:              m.Text,
		ConditionID:       m.ConditionID,
		PromptFingerprint: m.PromptFingerprint,
		Model:             m.Model,
		Temperature:       m.Temperature,
		MaxTokens:         m.MaxTokens,
		PromptTokens:      m.PromptTokens,
		CompletionTokens:  m.CompletionTokens,
		TotalTokens:       m.TotalTokens,
		Metadata:          mapToJSON(m.Metadata),
	}
}
