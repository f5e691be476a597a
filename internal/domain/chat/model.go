package chat

import (
	"context"
	"time"
)

// Role indicates who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one utterance in a session. Turn indices within a session are
// contiguous from 0 and alternate user/assistant starting with user. The
// provenance fields are snapshotted at write time so every message stays
// self-describing even if the condition is edited afterwards.
type Message struct {
	ID        uint
	SessionID string
	TurnIndex int
	Role      Role
	Text      string
	CreatedAt time.Time

	// Provenance snapshot, captured at send time.
	ConditionID       string
	PromptFingerprint string
	Model             string
	Temperature       float64
	MaxTokens         int

	// Token accounting.
	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int

	Metadata map[string]any
}

// MessageRepository persists conversation messages.
type MessageRepository interface {
	// RecordTurn writes the user and assistant messages at the next two turn
	// indices and increments the session's turn counter, all inside one unit
	// of work. The repository assigns TurnIndex on both messages.
	RecordTurn(ctx context.Context, sessionID string, user, assistant *Message) error

	// ListRecent returns up to limit messages for the session ordered by
	// turn index descending (newest first).
	ListRecent(ctx context.Context, sessionID string, limit int) ([]Message, error)

	CountBySession(ctx context.Context, sessionID string) (int64, error)
}
