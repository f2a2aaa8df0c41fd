package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
)

func SetupDevRouter(e *echo.Echo, environment string, devSeedHandler *handler.DevSeedHandler) {
	if environment != "development" {
		return
	}

	e.POST("/_dev/users", devSeedHandler.SeedUser)
	e.POST("/_dev/products", devSeedHandler.SeedProduct)
}
