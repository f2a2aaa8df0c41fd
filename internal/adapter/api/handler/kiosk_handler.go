package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/usecase"
	"campusmarket/pkg/response"
)

type KioskHandler struct {
	kioskUC *usecase.KioskUseCase
}

func NewKioskHandler(kioskUC *usecase.KioskUseCase) *KioskHandler {
	return &KioskHandler{
		kioskUC: kioskUC,
	}
}

func (h *KioskHandler) SellerStart(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	tx, created, err := h.kioskUC.SellerStart(c.Request().Context(), identity, c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	if !created {
		return response.SuccessWithMessage(c, tx, "Transaction already in progress")
	}
	return response.Created(c, tx)
}

func (h *KioskHandler) Lookup(c echo.Context) error {
	detail, err := h.kioskUC.Lookup(c.Request().Context(), c.Param("serial"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, detail)
}

func (h *KioskHandler) ConfirmDeposit(c echo.Context) error {
	tx, err := h.kioskUC.ConfirmDeposit(c.Request().Context(), c.Param("serial"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *KioskHandler) SellerComplete(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	tx, err := h.kioskUC.SellerComplete(c.Request().Context(), identity, c.Param("serial"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *KioskHandler) BuyerPay(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	tx, err := h.kioskUC.BuyerPay(c.Request().Context(), identity, c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *KioskHandler) Pickup(c echo.Context) error {
	tx, err := h.kioskUC.Pickup(c.Request().Context(), c.Param("serial"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *KioskHandler) Status(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	status, err := h.kioskUC.Status(c.Request().Context(), identity, c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, status)
}
