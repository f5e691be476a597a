package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/audit"
	"chatbot-research/experiment-api/internal/domain/condition"
	"chatbot-research/experiment-api/internal/domain/llm"
	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/infrastructure/metrics"
	"chatbot-research/experiment-api/internal/infrastructure/observability"
)

// TurnResult carries everything a caller needs from one completed turn.
type TurnResult struct {
	AssistantText     string
	Condition         *condition.Condition
	PromptFingerprint string
	Usage             *llm.Usage
}

// FinalTurnResult is a turn followed by session termination and redirect.
type FinalTurnResult struct {
	TurnResult
	RedirectURL string
}

// Service is the conversation-turn pipeline.
type Service interface {
	HandleTurn(ctx context.Context, sessionID, userText string) (*TurnResult, error)
	HandleFinalTurn(ctx context.Context, sessionID, userText string) (*FinalTurnResult, error)
}

// ServiceImpl provides the domain implementation.
type ServiceImpl struct {
	sessions   session.Repository
	lifecycle  session.Service
	conditions condition.Repository
	messages   MessageRepository
	provider   llm.Provider
	auditLog   *audit.Logger
	window     int
	locks      sessionLocks
	log        zerolog.Logger
}

// NewService wires dependencies. window is the number of conversational turn
// pairs replayed into each completion payload.
func NewService(
	sessions session.Repository,
	lifecycle session.Service,
	conditions condition.Repository,
	messages MessageRepository,
	provider llm.Provider,
	auditLog *audit.Logger,
	window int,
	log zerolog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		sessions:   sessions,
		lifecycle:  lifecycle,
		conditions: conditions,
		messages:   messages,
		provider:   provider,
		auditLog:   auditLog,
		window:     window,
		log:        log.With().Str("component", "turn-pipeline").Logger(),
	}
}

var _ Service = (*ServiceImpl)(nil)

// HandleTurn runs the full turn cycle: validate the session is active, load
// the bound condition, replay the memory window, call the completion
// backend, and durably record both sides of the exchange plus the counter
// increment as one unit of work. A gateway failure aborts before any
// persistence; the gateway call is never retried here because a second
// invocation would produce a different, unaccountable reply.
func (s *ServiceImpl) HandleTurn(ctx context.Context, sessionID, userText string) (*TurnResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	ctx, span := observability.GetTracer().Start(ctx, "chat.handle_turn")
	defer span.End()

	sess, err := s.sessions.FindByPublicID(ctx, sessionID)
	if err != nil {
		metrics.RecordTurn("rejected", 0)
		return nil, err
	}
	if sess.Status != session.StatusActive {
		metrics.RecordTurn("rejected", 0)
		return nil, apperrors.Newf(apperrors.KindNotActive, "chat session %s is not active", sessionID)
	}

	cond, err := s.conditions.FindByPublicID(ctx, sess.ConditionID)
	if err != nil {
		metrics.RecordTurn("rejected", 0)
		return nil, err
	}
	fingerprint := cond.PromptFingerprint
	if fingerprint == "" {
		fingerprint = condition.Fingerprint(cond.SystemPrompt)
	}

	// Memory window: the last window*2 messages, restored to chronological
	// order. This bounds payload size regardless of conversation length.
	history, err := s.messages.ListRecent(ctx, sessionID, s.window*2)
	if err != nil {
		metrics.RecordTurn("rejected", 0)
		return nil, err
	}
	payload := buildPayload(cond.SystemPrompt, history, userText)

	gatewayStart := time.Now()
	completion, err := s.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
		Model:       cond.Model,
		Messages:    payload,
		Temperature: &cond.Temperature,
		MaxTokens:   &cond.MaxTokens,
	})
	gatewayElapsed := time.Since(gatewayStart).Seconds()
	if err != nil {
		metrics.RecordTurn("gateway_error", gatewayElapsed)
		s.auditLog.Log(ctx, audit.Entry{
			Type:        audit.TypeError,
			Severity:    audit.SeverityError,
			Description: "completion gateway call failed",
			SessionID:   &sessionID,
			Metadata:    map[string]any{"error": err.Error()},
		})
		return nil, apperrors.Wrap(apperrors.KindGatewayFailure, "completion gateway call failed", err)
	}

	assistantText := completion.Text()
	now := time.Now().UTC()

	provenance := Message{
		SessionID:         sessionID,
		ConditionID:       cond.PublicID,
		PromptFingerprint: fingerprint,
		Model:             cond.Model,
		Temperature:       cond.Temperature,
		MaxTokens:         cond.MaxTokens,
		CreatedAt:         now,
	}

	userMsg := provenance
	userMsg.Role = RoleUser
	userMsg.Text = userText
	userMsg.Metadata = map[string]any{"client_turn": true}

	assistantMsg := provenance
	assistantMsg.Role = RoleAssistant
	assistantMsg.Text = assistantText
	assistantMsg.Metadata = map[string]any{}

	if usage := completion.Usage; usage != nil {
		userMsg.PromptTokens = &usage.PromptTokens
		assistantMsg.CompletionTokens = &usage.CompletionTokens
		assistantMsg.TotalTokens = &usage.TotalTokens
		metrics.RecordTokenUsage(usage.PromptTokens, usage.CompletionTokens)
	}
	if completion.ID != "" {
		assistantMsg.Metadata["llm_response_id"] = completion.ID
	}

	if err := s.messages.RecordTurn(ctx, sessionID, &userMsg, &assistantMsg); err != nil {
		// The reply was obtained but not recorded; this must surface
		// distinctly so the lost exchange is accountable.
		metrics.RecordTurn("persistence_error", gatewayElapsed)
		s.auditLog.Log(ctx, audit.Entry{
			Type:        audit.TypeError,
			Severity:    audit.SeverityFatal,
			Description: "turn persistence failed after successful completion",
			SessionID:   &sessionID,
			Metadata:    map[string]any{"error": err.Error()},
		})
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "record turn", err)
	}

	metrics.RecordTurn("ok", gatewayElapsed)
	s.log.Debug().
		Str("session_id", sessionID).
		Int("turn_index", userMsg.TurnIndex).
		Float64("gateway_seconds", gatewayElapsed).
		Msg("turn recorded")

	return &TurnResult{
		AssistantText:     assistantText,
		Condition:         cond,
		PromptFingerprint: fingerprint,
		Usage:             completion.Usage,
	}, nil
}

// HandleFinalTurn processes the last turn, terminates the session, and
// returns the post-survey redirect alongside the assistant reply.
func (s *ServiceImpl) HandleFinalTurn(ctx context.Context, sessionID, userText string) (*FinalTurnResult, error) {
	turn, err := s.HandleTurn(ctx, sessionID, userText)
	if err != nil {
		return nil, err
	}

	ended, err := s.lifecycle.End(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &FinalTurnResult{
		TurnResult:  *turn,
		RedirectURL: ended.RedirectURL,
	}, nil
}

// buildPayload assembles the completion request: the condition's system
// prompt, then the chronological user/assistant history, then the new user
// text. System or audit entries in history are excluded from replay.
func buildPayload(systemPrompt string, newestFirst []Message, userText string) []llm.ChatMessage {
	payload := make([]llm.ChatMessage, 0, len(newestFirst)+2)
	payload = append(payload, llm.ChatMessage{Role: string(RoleSystem), Content: systemPrompt})

	for i := len(newestFirst) - 1; i >= 0; i-- {
		m := newestFirst[i]
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		payload = append(payload, llm.ChatMessage{Role: string(m.Role), Content: m.Text})
	}

	payload = append(payload, llm.ChatMessage{Role: string(RoleUser), Content: userText})
	return payload
}
