package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}
