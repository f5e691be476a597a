package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/chat"
	"chatbot-research/experiment-api/internal/interfaces/httpserver/requests"
	"chatbot-research/experiment-api/internal/interfaces/httpserver/responses"
)

// ChatHandler exposes HTTP entrypoints for the turn pipeline.
type ChatHandler struct {
	service chat.Service
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service chat.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req requests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	turn, err := h.service.HandleTurn(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.ChatResponse{
		SessionID:         req.SessionID,
		AssistantMessage:  turn.AssistantText,
		ConditionID:       turn.Condition.PublicID,
		PromptFingerprint: turn.PromptFingerprint,
		Usage:             responses.UsageFrom(turn.Usage),
	})
}

// FinalChat handles POST /chat/final: one last turn, then the session is
// terminated and the redirect returned in the same response.
func (h *ChatHandler) FinalChat(c *gin.Context) {
	var req requests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	turn, err := h.service.HandleFinalTurn(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.FinalChatResponse{
		ChatResponse: responses.ChatResponse{
			SessionID:         req.SessionID,
			AssistantMessage:  turn.AssistantText,
			ConditionID:       turn.Condition.PublicID,
			PromptFingerprint: turn.PromptFingerprint,
			Usage:             responses.UsageFrom(turn.Usage),
		},
		Status:      "completed",
		RedirectURL: turn.RedirectURL,
	})
}
