package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/response"
)

// DevSeedHandler lets local setups create the users and listings that the
// account and listing services own in production.
type DevSeedHandler struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
}

func NewDevSeedHandler(userRepo repository.UserRepository, productRepo repository.ProductRepository) *DevSeedHandler {
	return &DevSeedHandler{
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

type SeedUserRequest struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Nickname string `json:"nickname"`
}

type SeedProductRequest struct {
	ID          string `json:"id"`
	SellerID    string `json:"seller_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Price       int64  `json:"price" validate:"gt=0"`
	TradeMethod string `json:"trade_method" validate:"required,oneof=DIRECT KIOSK REMOTE"`
}

func (h *DevSeedHandler) SeedUser(c echo.Context) error {
	var req SeedUserRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user := &entity.User{
		ID:       req.ID,
		Username: req.Username,
		Nickname: req.Nickname,
	}
	if err := h.userRepo.Create(c.Request().Context(), user); err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, user)
}

func (h *DevSeedHandler) SeedProduct(c echo.Context) error {
	var req SeedProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ctx := c.Request().Context()
	if _, err := h.userRepo.GetByID(ctx, req.SellerID); err != nil {
		return response.Error(c, err)
	}

	product := &entity.Product{
		ID:          req.ID,
		SellerID:    req.SellerID,
		Name:        req.Name,
		Price:       req.Price,
		Status:      entity.ProductStatusOnSale,
		TradeMethod: req.TradeMethod,
	}
	if err := h.productRepo.Create(ctx, product); err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, product)
}
