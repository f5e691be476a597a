package routes

import (
	"github.com/gin-gonic/gin"

	"chatbot-research/experiment-api/internal/interfaces/httpserver/handlers"
)

func registerAdminRoutes(router gin.IRoutes, handler *handlers.AdminHandler) {
	router.GET("/admin/sessions", handler.ListSessions)
	router.GET("/admin/export", handler.Export)
}
