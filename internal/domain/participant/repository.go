package participant

import "context"

// Repository persists participants. Uniqueness of the identity pair and the
// one-time condition assignment are delegated to the store's conditional
// write primitives, not in-process locks.
type Repository interface {
	// Upsert inserts a participant for the identity pair if absent and
	// returns the stored record either way. Concurrent first-contact calls
	// for the same pair must both observe the same record.
	Upsert(ctx context.Context, externalID, studyID string) (*Participant, error)

	FindByPublicID(ctx context.Context, publicID string) (*Participant, error)

	// SetAssignedCondition persists the condition reference only if it is
	// still unset. Returns false when another writer assigned first.
	SetAssignedCondition(ctx context.Context, participantID uint, conditionID string) (bool, error)
}
