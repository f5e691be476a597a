package event

import (
	"context"

	"gorm.io/gorm"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/audit"
	"chatbot-research/experiment-api/internal/infrastructure/database/entities"
)

// Repository appends audit events. The table is append-only; nothing here
// updates or deletes.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an event repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ audit.Repository = (*Repository)(nil)

// Append inserts the event record.
func (r *Repository) Append(ctx context.Context, e *audit.Event) error {
	row := entities.NewSchemaEvent(e)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperrors.Wrap(apperrors.KindDatabase, "append event", err)
	}
	e.ID = row.ID
	e.CreatedAt = row.CreatedAt
	return nil
}

// ListBySession returns a session's audit trail oldest-first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]audit.Event, error) {
	var rows []entities.Event
	err := r.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "list events", err)
	}

	result := make([]audit.Event, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}
