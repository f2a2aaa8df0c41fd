package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetLimitParam reads the "limit" query parameter, falling back to def
// when it is missing, malformed or outside (0, max].
func GetLimitParam(c echo.Context, def, max int) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > max {
		return def
	}
	return limit
}
