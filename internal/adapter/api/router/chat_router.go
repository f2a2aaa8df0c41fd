package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
)

// SetupChatRouter sets up the REST chat routes. Live traffic goes over /ws.
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/chat")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.GET("/messages", chatHandler.GetMessages) // ?product_id=&limit=
}
