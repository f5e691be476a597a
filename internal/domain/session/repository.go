package session

import (
	"context"
	"time"
)

// Filter narrows admin session listings.
type Filter struct {
	ExperimentID *string
	ConditionID  *string
	Status       *Status
	Limit        int
}

// Repository persists conversation sessions.
type Repository interface {
	Create(ctx context.Context, s *Session) error

	FindByPublicID(ctx context.Context, publicID string) (*Session, error)

	// MarkEnded sets status to completed and stamps the end time, returning
	// the updated session. A repeated call is a non-fatal re-terminate that
	// overwrites the end timestamp. Fails with NotFound when absent.
	MarkEnded(ctx context.Context, publicID string, at time.Time) (*Session, error)

	// ListByFilter returns sessions newest-first for the admin surface.
	ListByFilter(ctx context.Context, filter Filter) ([]Session, error)

	// ReapStale marks active sessions with no writes since idleBefore as
	// abandoned and stamps their end time, returning how many were swept.
	// Terminated sessions are never touched.
	ReapStale(ctx context.Context, idleBefore time.Time, endedAt time.Time) (int64, error)
}
