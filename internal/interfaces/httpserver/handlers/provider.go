package handlers

import (
	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/chat"
	"chatbot-research/experiment-api/internal/domain/export"
	"chatbot-research/experiment-api/internal/domain/session"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Session *SessionHandler
	Chat    *ChatHandler
	Admin   *AdminHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	sessionService session.Service,
	chatService chat.Service,
	exportService export.Service,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Session: NewSessionHandler(sessionService, log),
		Chat:    NewChatHandler(chatService, log),
		Admin:   NewAdminHandler(exportService, log),
	}
}
