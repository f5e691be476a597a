package condition

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	domain "chatbot-research/experiment-api/internal/domain/condition"
	"chatbot-research/experiment-api/internal/infrastructure/database/entities"
)

// Repository reads experiment conditions. Rows are authored by an external
// admin process; this service never writes them.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a condition repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Repository = (*Repository)(nil)

// FindByPublicID fetches a condition by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Condition, error) {
	var stored entities.Condition
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "condition not found: %s", publicID)
		}
		return nil, apperrors.Wrap(apperrors.KindDatabase, "fetch condition", err)
	}
	return stored.EtoD(), nil
}

// PickRandomActive samples one active condition under the experiment. RANDOM()
// ordering keeps the selection uniform across arms.
func (r *Repository) PickRandomActive(ctx context.Context, experimentID string) (*domain.Condition, error) {
	var stored entities.Condition
	err := r.db.WithContext(ctx).
		Where("experiment_id = ? AND is_active = ?", experimentID, true).
		Order("RANDOM()").
		First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNoActiveConditions, "no active conditions for experiment %s", experimentID)
		}
		return nil, apperrors.Wrap(apperrors.KindDatabase, "sample active condition", err)
	}
	return stored.EtoD(), nil
}
