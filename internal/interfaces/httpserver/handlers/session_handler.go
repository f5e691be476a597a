package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/interfaces/httpserver/requests"
	"chatbot-research/experiment-api/internal/interfaces/httpserver/responses"
)

// SessionHandler exposes HTTP entrypoints for the session lifecycle.
type SessionHandler struct {
	service session.Service
	log     zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service session.Service, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log.With().Str("handler", "session").Logger(),
	}
}

// Start handles POST /session/start.
func (h *SessionHandler) Start(c *gin.Context) {
	var req requests.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	result, err := h.service.Start(c.Request.Context(), session.StartParams{
		ExternalID:        req.ParticipantID,
		StudyID:           req.StudyID,
		ExperimentID:      req.ExperimentID,
		ExternalSessionID: req.ExternalSessionID,
		QRPre:             req.QRPre,
		ClientMetadata:    req.Metadata,
	})
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.StartSessionResponse{
		SessionID:     result.Session.PublicID,
		ParticipantID: result.Participant.PublicID,
		ConditionID:   result.Condition.PublicID,
		Status:        string(result.Session.Status),
	})
}

// End handles POST /session/end.
func (h *SessionHandler) End(c *gin.Context) {
	var req requests.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	result, err := h.service.End(c.Request.Context(), req.SessionID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.EndSessionResponse{
		SessionID:   result.Session.PublicID,
		Status:      string(result.Session.Status),
		RedirectURL: result.RedirectURL,
	})
}
