package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/infrastructure/ratelimit"
)

func SetupKioskRouter(e *echo.Echo, kioskHandler *handler.KioskHandler, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	kioskGroup := e.Group("/v1/kiosk")

	// Terminal endpoints, keyed by serial and unauthenticated
	terminal := middleware.RateLimit(limiter, ratelimit.ActionKioskTerminal)
	kioskGroup.GET("/transaction/:serial", kioskHandler.Lookup, terminal)
	kioskGroup.POST("/deposit/:serial", kioskHandler.ConfirmDeposit, terminal)
	kioskGroup.POST("/pickup/:serial", kioskHandler.Pickup, terminal)

	kioskGroup.POST("/seller/start/:productId", kioskHandler.SellerStart, authMiddleware.Authenticate)
	kioskGroup.POST("/seller/complete/:serial", kioskHandler.SellerComplete, authMiddleware.Authenticate)
	kioskGroup.POST("/buyer/pay/:productId", kioskHandler.BuyerPay, authMiddleware.Authenticate)
	kioskGroup.GET("/status/:productId", kioskHandler.Status, authMiddleware.Authenticate)
}
