package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/response"
)

type RemoteTradeHandler struct {
	remoteTradeUC *usecase.RemoteTradeUseCase
}

func NewRemoteTradeHandler(remoteTradeUC *usecase.RemoteTradeUseCase) *RemoteTradeHandler {
	return &RemoteTradeHandler{
		remoteTradeUC: remoteTradeUC,
	}
}

type BuyerPayRequest struct {
	Amount *int64 `json:"amount" validate:"omitempty,gt=0"`
}

func (h *RemoteTradeHandler) Get(c echo.Context) error {
	if _, err := currentIdentity(c); err != nil {
		return response.Error(c, err)
	}

	trade, err := h.remoteTradeUC.GetOrCreate(c.Request().Context(), c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, trade)
}

func (h *RemoteTradeHandler) SellerStart(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	trade, err := h.remoteTradeUC.SellerStart(c.Request().Context(), identity, c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, trade)
}

func (h *RemoteTradeHandler) BuyerPay(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req BuyerPayRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	trade, err := h.remoteTradeUC.BuyerPay(c.Request().Context(), identity, c.Param("productId"), req.Amount)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, trade)
}

func (h *RemoteTradeHandler) SellerComplete(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	trade, err := h.remoteTradeUC.SellerComplete(c.Request().Context(), identity, c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, trade)
}

func (h *RemoteTradeHandler) BuyerComplete(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	trade, err := h.remoteTradeUC.BuyerComplete(c.Request().Context(), identity, c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, trade)
}
