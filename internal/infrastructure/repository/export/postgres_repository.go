package export

import (
	"context"

	"gorm.io/gorm"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/chat"
	"chatbot-research/experiment-api/internal/domain/export"
	"chatbot-research/experiment-api/internal/domain/participant"
	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/infrastructure/database/entities"
)

// Repository produces full-table dumps for the admin export surface.
// Row order is deterministic so repeated exports diff cleanly.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an export repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ export.Repository = (*Repository)(nil)

// DumpParticipants returns every participant, oldest enrollment first.
func (r *Repository) DumpParticipants(ctx context.Context) ([]participant.Participant, error) {
	var rows []entities.Participant
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "dump participants", err)
	}

	result := make([]participant.Participant, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}

// DumpSessions returns sessions, optionally restricted to one experiment.
func (r *Repository) DumpSessions(ctx context.Context, experimentID *string) ([]session.Session, error) {
	q := r.db.WithContext(ctx).Model(&entities.ChatSession{})
	if experimentID != nil {
		q = q.Where("experiment_id = ?", *experimentID)
	}

	var rows []entities.ChatSession
	err := q.Order("started_at ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "dump sessions", err)
	}

	result := make([]session.Session, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}

// DumpMessages returns messages grouped by session and ordered by turn. The
// experiment filter goes through the owning session since messages only carry
// the session id.
func (r *Repository) DumpMessages(ctx context.Context, experimentID *string) ([]chat.Message, error) {
	q := r.db.WithContext(ctx).Model(&entities.Message{})
	if experimentID != nil {
		q = q.Joins("JOIN chat_sessions ON chat_sessions.public_id = messages.chat_session_id").
			Where("chat_sessions.experiment_id = ?", *experimentID)
	}

	var rows []entities.Message
	err := q.Order("messages.chat_session_id ASC, messages.turn_index ASC").Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "dump messages", err)
	}

	result := make([]chat.Message, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}
