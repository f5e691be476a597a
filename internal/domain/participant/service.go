package participant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/condition"
)

// Service resolves participants and binds each one to exactly one condition.
type Service interface {
	// Resolve performs an idempotent get-or-create keyed by the identity pair.
	Resolve(ctx context.Context, externalID, studyID string) (*Participant, error)

	// AssignCondition returns the participant's condition. On first contact it
	// selects uniformly at random from the experiment's active set and
	// persists the choice; afterwards it always returns the persisted
	// condition, even if that condition has since been deactivated.
	AssignCondition(ctx context.Context, p *Participant, experimentID string) (*condition.Condition, error)
}

// ServiceImpl provides the domain implementation.
type ServiceImpl struct {
	participants Repository
	conditions   condition.Repository
	log          zerolog.Logger
}

// NewService wires dependencies.
func NewService(participants Repository, conditions condition.Repository, log zerolog.Logger) *ServiceImpl {
	return &ServiceImpl{
		participants: participants,
		conditions:   conditions,
		log:          log.With().Str("component", "assignment").Logger(),
	}
}

var _ Service = (*ServiceImpl)(nil)

func (s *ServiceImpl) Resolve(ctx context.Context, externalID, studyID string) (*Participant, error) {
	return s.participants.Upsert(ctx, externalID, studyID)
}

func (s *ServiceImpl) AssignCondition(ctx context.Context, p *Participant, experimentID string) (*condition.Condition, error) {
	if p.AssignedConditionID != nil && *p.AssignedConditionID != "" {
		// Stability overrides activity: reuse the persisted assignment.
		return s.conditions.FindByPublicID(ctx, *p.AssignedConditionID)
	}

	picked, err := s.conditions.PickRandomActive(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	ok, err := s.participants.SetAssignedCondition(ctx, p.ID, picked.PublicID)
	if err != nil {
		return nil, fmt.Errorf("persist assignment: %w", err)
	}
	if !ok {
		// A concurrent first session won the conditional write. Re-read and
		// honor the winner's choice so the assignment stays exactly-once.
		stored, err := s.participants.FindByPublicID(ctx, p.PublicID)
		if err != nil {
			return nil, err
		}
		if stored.AssignedConditionID == nil {
			return nil, fmt.Errorf("assignment lost conditional write but field is unset for participant %s", p.PublicID)
		}
		p.AssignedConditionID = stored.AssignedConditionID
		s.log.Debug().
			Str("participant_id", p.PublicID).
			Str("condition_id", *stored.AssignedConditionID).
			Msg("concurrent assignment resolved to stored condition")
		return s.conditions.FindByPublicID(ctx, *stored.AssignedConditionID)
	}

	p.AssignedConditionID = &picked.PublicID
	s.log.Info().
		Str("participant_id", p.PublicID).
		Str("condition_id", picked.PublicID).
		Str("experiment_id", experimentID).
		Msg("condition assigned")
	return picked, nil
}
