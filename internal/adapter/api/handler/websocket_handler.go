package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/middleware"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/logger"
)

type WebSocketHandler struct {
	chatUC     *usecase.ChatUseCase
	identityUC *usecase.IdentityUseCase
	upgrader   gorillaws.Upgrader
}

func NewWebSocketHandler(chatUC *usecase.ChatUseCase, identityUC *usecase.IdentityUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		chatUC:     chatUC,
		identityUC: identityUC,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the token, not the origin, gates the connection
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket serves GET /ws?token=...&product_id=... and blocks for the
// lifetime of the connection.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ctx := c.Request().Context()
	identity, authErr := h.identityUC.Resolve(ctx, middleware.BearerToken(c.Request()))

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed: %v", err)
		return nil
	}

	if authErr != nil {
		logger.Warn("WebSocket identity rejected from %s: %v", c.RealIP(), authErr)
		ws.ClosePolicy(conn, "authentication failed")
		return nil
	}

	client := ws.NewClient(conn, identity, c.QueryParam("product_id"))

	// drain the replay while it is being queued
	go client.WritePump()
	if err := h.chatUC.Join(ctx, client); err != nil {
		logger.Error("Chat join failed for user %s: %v", identity.UserID, err)
		h.chatUC.Leave(client)
		return nil
	}

	client.ReadPump(func(raw []byte) {
		h.chatUC.HandleFrame(ctx, client, raw)
	})
	h.chatUC.Leave(client)
	return nil
}
