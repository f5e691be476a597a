package responses

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/llm"
	"chatbot-research/experiment-api/internal/domain/session"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForKind maps the domain error taxonomy onto HTTP statuses.
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindNotActive:
		return http.StatusConflict
	case apperrors.KindNoActiveConditions:
		return http.StatusServiceUnavailable
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindGatewayFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError classifies err and aborts the request with the matching status
// and envelope. Unclassified errors read as database failures.
func HandleError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	c.AbortWithStatusJSON(statusForKind(kind), ErrorResponse{
		Code:    string(kind),
		Message: err.Error(),
	})
}

// HandleBindError rejects malformed request bodies.
func HandleBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    string(apperrors.KindValidation),
		Message: err.Error(),
	})
}

// SessionPayload is the client-facing session view.
type SessionPayload struct {
	SessionID     string         `json:"session_id"`
	ParticipantID string         `json:"participant_id"`
	ExperimentID  string         `json:"experiment_id"`
	ConditionID   string         `json:"condition_id"`
	Status        string         `json:"status"`
	TurnCount     int            `json:"turn_count"`
	StartedAt     time.Time      `json:"started_at"`
	EndedAt       *time.Time     `json:"ended_at,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// FromSession maps a domain session to its payload.
func FromSession(s *session.Session) SessionPayload {
	return SessionPayload{
		SessionID:     s.PublicID,
		ParticipantID: s.ParticipantID,
		ExperimentID:  s.ExperimentID,
		ConditionID:   s.ConditionID,
		Status:        string(s.Status),
		TurnCount:     s.TurnCount,
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt,
		Metadata:      s.ClientMetadata,
	}
}

// StartSessionResponse is returned by POST /session/start. The condition id
// is included so the frontend can stamp it into survey embedded data.
type StartSessionResponse struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
	ConditionID   string `json:"condition_id"`
	Status        string `json:"status"`
}

// EndSessionResponse is returned by POST /session/end.
type EndSessionResponse struct {
	SessionID   string `json:"session_id"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// UsagePayload exposes gateway token accounting on a turn.
type UsagePayload struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	SessionID         string        `json:"session_id"`
	AssistantMessage  string        `json:"assistant_message"`
	ConditionID       string        `json:"condition_id"`
	PromptFingerprint string        `json:"prompt_fingerprint"`
	Usage             *UsagePayload `json:"usage,omitempty"`
}

// FinalChatResponse is returned by POST /chat/final: the last assistant
// reply plus the post-survey redirect.
type FinalChatResponse struct {
	ChatResponse
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// UsageFrom converts gateway usage, or nil when the backend omitted it.
func UsageFrom(u *llm.Usage) *UsagePayload {
	if u == nil {
		return nil
	}
	return &UsagePayload{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

// SessionListResponse wraps the admin listing.
type SessionListResponse struct {
	Data []SessionPayload `json:"data"`
}
