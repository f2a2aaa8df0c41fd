package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	ws "campusmarket/internal/infrastructure/websocket"
)

type HealthHandler struct {
	wsManager   *ws.Manager
	storeDriver string
}

func NewHealthHandler(wsManager *ws.Manager, storeDriver string) *HealthHandler {
	return &HealthHandler{
		wsManager:   wsManager,
		storeDriver: storeDriver,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"store":       h.storeDriver,
		"connections": h.wsManager.Count(),
		"time":        time.Now().Format(time.RFC3339),
	})
}
