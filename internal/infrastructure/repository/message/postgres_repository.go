package message

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/chat"
	"chatbot-research/experiment-api/internal/infrastructure/database/entities"
)

// Repository persists conversation messages.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a message repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ chat.MessageRepository = (*Repository)(nil)

// RecordTurn assigns the next two turn indices, inserts both messages, and
// increments the session turn counter inside one transaction. Either the
// whole turn lands or none of it does; a half-applied turn cannot corrupt
// history for the next one.
func (r *Repository) RecordTurn(ctx context.Context, sessionID string, user, assistant *chat.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last entities.Message
		base := 0
		err := tx.Where("chat_session_id = ?", sessionID).
			Order("turn_index DESC").
			First(&last).Error
		switch {
		case err == nil:
			base = last.TurnIndex + 1
		case errors.Is(err, gorm.ErrRecordNotFound):
			base = 0
		default:
			return err
		}

		user.TurnIndex = base
		assistant.TurnIndex = base + 1

		rows := []*entities.Message{
			entities.NewSchemaMessage(user),
			entities.NewSchemaMessage(assistant),
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		user.ID = rows[0].ID
		assistant.ID = rows[1].ID

		// One counter increment per user+assistant pair.
		result := tx.Model(&entities.ChatSession{}).
			Where("public_id = ?", sessionID).
			Update("turn_count", gorm.Expr("turn_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Newf(apperrors.KindNotFound, "chat session not found: %s", sessionID)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return err
		}
		return apperrors.Wrap(apperrors.KindDatabase, "record turn", err)
	}
	return nil
}

// ListRecent returns up to limit messages ordered by turn index descending.
func (r *Repository) ListRecent(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	var rows []entities.Message
	err := r.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionID).
		Order("turn_index DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "list recent messages", err)
	}

	result := make([]chat.Message, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}

// CountBySession counts all messages recorded for a session.
func (r *Repository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("chat_session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindDatabase, "count messages", err)
	}
	return count, nil
}
