package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
)

func SetupRemoteTradeRouter(e *echo.Echo, remoteTradeHandler *handler.RemoteTradeHandler, authMiddleware *middleware.AuthMiddleware) {
	tradeGroup := e.Group("/v1/remote-trade")
	tradeGroup.Use(authMiddleware.Authenticate)

	tradeGroup.GET("/:productId", remoteTradeHandler.Get)
	tradeGroup.POST("/:productId/seller/start", remoteTradeHandler.SellerStart)
	tradeGroup.POST("/:productId/buyer/pay", remoteTradeHandler.BuyerPay)
	tradeGroup.POST("/:productId/seller/complete", remoteTradeHandler.SellerComplete)
	tradeGroup.POST("/:productId/buyer/complete", remoteTradeHandler.BuyerComplete)
}
