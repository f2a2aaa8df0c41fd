package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
)

func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// auth happens inside the handler so a rejected token still gets a close frame
	e.GET("/ws", wsHandler.HandleWebSocket)
}
