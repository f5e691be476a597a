package participant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	domain "chatbot-research/experiment-api/internal/domain/participant"
	"chatbot-research/experiment-api/internal/infrastructure/database/entities"
)

// Repository persists participants.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a participant repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Repository = (*Repository)(nil)

// Upsert inserts a row for the identity pair if absent, then returns the
// stored row. The insert uses ON CONFLICT DO NOTHING against the unique
// identity index, so a race between two first-contact requests resolves to
// both callers reading the same winner row rather than a duplicate-key
// failure.
func (r *Repository) Upsert(ctx context.Context, externalID, studyID string) (*domain.Participant, error) {
	row := &entities.Participant{
		PublicID:   newPublicID(),
		ExternalID: externalID,
		StudyID:    studyID,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}, {Name: "study_id"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "upsert participant", err)
	}

	var stored entities.Participant
	err = r.db.WithContext(ctx).
		Where("external_id = ? AND study_id = ?", externalID, studyID).
		First(&stored).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "fetch participant after upsert", err)
	}
	return stored.EtoD(), nil
}

// FindByPublicID fetches a participant by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Participant, error) {
	var stored entities.Participant
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "participant not found: %s", publicID)
		}
		return nil, apperrors.Wrap(apperrors.KindDatabase, "fetch participant", err)
	}
	return stored.EtoD(), nil
}

// SetAssignedCondition writes the condition reference only when the column
// is still NULL. Zero rows affected means another writer assigned first.
func (r *Repository) SetAssignedCondition(ctx context.Context, participantID uint, conditionID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Participant{}).
		Where("id = ? AND assigned_condition_id IS NULL", participantID).
		Update("assigned_condition_id", conditionID)
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.KindDatabase, "set assigned condition", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func newPublicID() string {
	return fmt.Sprintf("part_%s", uuid.NewString())
}
