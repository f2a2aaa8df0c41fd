package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

func currentIdentity(c echo.Context) (entity.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return entity.Identity{}, errors.Unauthorized("User not authenticated", nil)
	}
	return identity, nil
}
