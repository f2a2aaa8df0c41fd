package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/usecase"
	"campusmarket/pkg/response"
	"campusmarket/pkg/utils"
)

type ChatHandler struct {
	chatUC *usecase.ChatUseCase
}

func NewChatHandler(chatUC *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUC: chatUC,
	}
}

// GetMessages returns the product conversation's recent messages oldest first.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	limit := utils.GetLimitParam(c, 50, 100)
	messages, err := h.chatUC.History(c.Request().Context(), identity, c.QueryParam("product_id"), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}
