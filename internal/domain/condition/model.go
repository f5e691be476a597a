package condition

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Condition is one experiment arm: a system prompt plus the model
// configuration used for every completion under that arm. Conditions are
// authored by an external admin process and are read-only to this service.
type Condition struct {
	ID                uint
	PublicID          string
	ExperimentID      string
	Name              string
	Description       *string
	SystemPrompt      string
	PromptFingerprint string
	Model             string
	Temperature       float64
	MaxTokens         int
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Fingerprint returns the hex SHA-256 of a system prompt. Messages carry
// this value so every recorded turn identifies the exact prompt version it
// was generated under.
func Fingerprint(systemPrompt string) string {
	sum := sha256.Sum256([]byte(systemPrompt))
	return hex.EncodeToString(sum[:])
}
