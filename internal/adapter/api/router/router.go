package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/infrastructure/ratelimit"
)

type Handlers struct {
	Kiosk       *handler.KioskHandler
	RemoteTrade *handler.RemoteTradeHandler
	Chat        *handler.ChatHandler
	WebSocket   *handler.WebSocketHandler
	Health      *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	SetupKioskRouter(e, h.Kiosk, authMiddleware, limiter)
	SetupRemoteTradeRouter(e, h.RemoteTrade, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
	SetupHealthRouter(e, h.Health)
}
