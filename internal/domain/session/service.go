package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/audit"
	"chatbot-research/experiment-api/internal/domain/condition"
	"chatbot-research/experiment-api/internal/domain/participant"
	"chatbot-research/experiment-api/internal/domain/redirect"
	"chatbot-research/experiment-api/internal/infrastructure/metrics"
)

// StartParams carries everything needed to open a session.
type StartParams struct {
	ExternalID        string
	StudyID           string
	ExperimentID      string
	ExternalSessionID *string
	QRPre             *string
	ClientMetadata    map[string]any
}

// StartResult bundles the created session with its bound condition.
type StartResult struct {
	Session     *Session
	Condition   *condition.Condition
	Participant *participant.Participant
}

// EndResult bundles the terminated session with the outbound redirect.
type EndResult struct {
	Session     *Session
	Condition   *condition.Condition
	RedirectURL string
}

// Service owns the session lifecycle state machine.
type Service interface {
	Start(ctx context.Context, params StartParams) (*StartResult, error)
	Get(ctx context.Context, publicID string) (*Session, error)
	End(ctx context.Context, publicID string) (*EndResult, error)
}

// ServiceImpl provides the domain implementation.
type ServiceImpl struct {
	sessions     Repository
	conditions   condition.Repository
	participants participant.Service
	people       participant.Repository
	auditLog     *audit.Logger
	redirectBase string
	log          zerolog.Logger
}

// NewService wires dependencies.
func NewService(
	sessions Repository,
	conditions condition.Repository,
	participants participant.Service,
	people participant.Repository,
	auditLog *audit.Logger,
	redirectBase string,
	log zerolog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		sessions:     sessions,
		conditions:   conditions,
		participants: participants,
		people:       people,
		auditLog:     auditLog,
		redirectBase: redirectBase,
		log:          log.With().Str("component", "session-lifecycle").Logger(),
	}
}

var _ Service = (*ServiceImpl)(nil)

// Start resolves the participant, binds the stable condition, and opens a
// fresh active session with a zeroed turn counter.
func (s *ServiceImpl) Start(ctx context.Context, params StartParams) (*StartResult, error) {
	p, err := s.participants.Resolve(ctx, params.ExternalID, params.StudyID)
	if err != nil {
		return nil, fmt.Errorf("resolve participant: %w", err)
	}

	cond, err := s.participants.AssignCondition(ctx, p, params.ExperimentID)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		PublicID:          NewPublicID(),
		ParticipantID:     p.PublicID,
		ExperimentID:      params.ExperimentID,
		ConditionID:       cond.PublicID,
		QRPre:             params.QRPre,
		ExternalSessionID: params.ExternalSessionID,
		Status:            StatusActive,
		TurnCount:         0,
		StartedAt:         time.Now().UTC(),
		ClientMetadata:    params.ClientMetadata,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.SessionsStartedTotal.WithLabelValues(params.ExperimentID).Inc()
	s.auditLog.Log(ctx, audit.Entry{
		Type:          audit.TypeSessionStart,
		Description:   fmt.Sprintf("session started for pid=%s", params.ExternalID),
		SessionID:     &sess.PublicID,
		ParticipantID: &p.PublicID,
	})
	s.log.Info().
		Str("session_id", sess.PublicID).
		Str("participant_id", p.PublicID).
		Str("condition_id", cond.PublicID).
		Msg("session started")

	return &StartResult{Session: sess, Condition: cond, Participant: p}, nil
}

func (s *ServiceImpl) Get(ctx context.Context, publicID string) (*Session, error) {
	return s.sessions.FindByPublicID(ctx, publicID)
}

// End marks the session completed and builds the post-survey redirect.
// Ending an already-terminated session re-stamps the end time; the terminal
// state itself never regresses.
func (s *ServiceImpl) End(ctx context.Context, publicID string) (*EndResult, error) {
	sess, err := s.sessions.MarkEnded(ctx, publicID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	cond, err := s.conditions.FindByPublicID(ctx, sess.ConditionID)
	if err != nil {
		return nil, err
	}

	externalID := ""
	if p, err := s.people.FindByPublicID(ctx, sess.ParticipantID); err == nil {
		externalID = p.ExternalID
	} else {
		s.log.Warn().Err(err).
			Str("session_id", sess.PublicID).
			Str("participant_id", sess.ParticipantID).
			Msg("participant lookup failed, redirect will carry an empty pid")
	}

	url := redirect.Build(s.redirectBase, externalID, sess.PublicID, cond.PublicID)

	metrics.SessionsEndedTotal.WithLabelValues(sess.ExperimentID).Inc()
	s.auditLog.Log(ctx, audit.Entry{
		Type:          audit.TypeSessionEnd,
		Description:   fmt.Sprintf("session ended for pid=%s", externalID),
		SessionID:     &sess.PublicID,
		ParticipantID: &sess.ParticipantID,
	})

	return &EndResult{Session: sess, Condition: cond, RedirectURL: url}, nil
}
