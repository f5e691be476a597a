package routes

import (
	"github.com/gin-gonic/gin"

	"chatbot-research/experiment-api/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/chat", handler.Chat)
	router.POST("/chat/final", handler.FinalChat)
}
