package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
}

func NewMemoryProductRepository() repository.ProductRepository {
	return &memoryProductRepository{
		products: make(map[string]*entity.Product),
	}
}

func (r *memoryProductRepository) Create(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	copied := *product
	return &copied, nil
}

func (r *memoryProductRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	product.Status = status
	product.UpdatedAt = time.Now()
	return nil
}
