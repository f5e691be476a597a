package routes

import (
	"github.com/gin-gonic/gin"

	"chatbot-research/experiment-api/internal/interfaces/httpserver/handlers"
)

// Provider coordinates all route registrations.
type Provider struct {
	handlers *handlers.Provider
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{handlers: handlerProvider}
}

// Register attaches all routes to the gin engine. Paths are unversioned to
// match the survey-platform integrations that call them.
func (p *Provider) Register(engine *gin.Engine) {
	registerSessionRoutes(engine, p.handlers.Session)
	registerChatRoutes(engine, p.handlers.Chat)
	registerAdminRoutes(engine, p.handlers.Admin)
}
