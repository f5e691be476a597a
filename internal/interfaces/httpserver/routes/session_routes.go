package routes

import (
	"github.com/gin-gonic/gin"

	"chatbot-research/experiment-api/internal/interfaces/httpserver/handlers"
)

func registerSessionRoutes(router gin.IRoutes, handler *handlers.SessionHandler) {
	router.POST("/session/start", handler.Start)
	router.POST("/session/end", handler.End)
}
