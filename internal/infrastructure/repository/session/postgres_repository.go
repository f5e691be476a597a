package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	domain "chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/infrastructure/database/entities"
)

const defaultListLimit = 500

// Repository persists conversation sessions.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a session repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Repository = (*Repository)(nil)

// Create inserts the session record.
func (r *Repository) Create(ctx context.Context, s *domain.Session) error {
	row := entities.NewSchemaChatSession(s)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperrors.Wrap(apperrors.KindDatabase, "create chat session", err)
	}
	s.ID = row.ID
	return nil
}

// FindByPublicID fetches a session by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Session, error) {
	var stored entities.ChatSession
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "chat session not found: %s", publicID)
		}
		return nil, apperrors.Wrap(apperrors.KindDatabase, "fetch chat session", err)
	}
	return stored.EtoD(), nil
}

// MarkEnded sets status to completed and stamps the end time. The status
// update only touches active rows so a terminal state (completed, abandoned)
// is never rewritten; re-terminating an already-ended session just overwrites
// the end timestamp, matching the non-fatal re-terminate policy.
func (r *Repository) MarkEnded(ctx context.Context, publicID string, at time.Time) (*domain.Session, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.ChatSession{}).
		Where("public_id = ? AND status = ?", publicID, string(domain.StatusActive)).
		Updates(map[string]any{
			"status":   string(domain.StatusCompleted),
			"ended_at": at,
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "mark session ended", result.Error)
	}
	if result.RowsAffected == 0 {
		// Already terminated, or absent. Re-stamp the end time without
		// touching the status; zero rows here means the id is unknown.
		restamp := r.db.WithContext(ctx).
			Model(&entities.ChatSession{}).
			Where("public_id = ?", publicID).
			Update("ended_at", at)
		if restamp.Error != nil {
			return nil, apperrors.Wrap(apperrors.KindDatabase, "re-stamp session end", restamp.Error)
		}
		if restamp.RowsAffected == 0 {
			return nil, apperrors.Newf(apperrors.KindNotFound, "chat session not found: %s", publicID)
		}
	}
	return r.FindByPublicID(ctx, publicID)
}

// ListByFilter returns sessions newest-first for the admin surface.
func (r *Repository) ListByFilter(ctx context.Context, filter domain.Filter) ([]domain.Session, error) {
	query := r.db.WithContext(ctx).Model(&entities.ChatSession{})

	if filter.ExperimentID != nil {
		query = query.Where("experiment_id = ?", *filter.ExperimentID)
	}
	if filter.ConditionID != nil {
		query = query.Where("condition_id = ?", *filter.ConditionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows []entities.ChatSession
	if err := query.Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "list chat sessions", err)
	}

	result := make([]domain.Session, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}

// ReapStale abandons active sessions whose last write predates idleBefore.
// The status filter keeps the sweep off terminated rows.
func (r *Repository) ReapStale(ctx context.Context, idleBefore time.Time, endedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.ChatSession{}).
		Where("status = ? AND updated_at < ?", string(domain.StatusActive), idleBefore).
		Updates(map[string]any{
			"status":   string(domain.StatusAbandoned),
			"ended_at": endedAt,
		})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.KindDatabase, "reap stale sessions", result.Error)
	}
	return result.RowsAffected, nil
}
