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

type memoryRemoteTradeRepository struct {
	mu        sync.Mutex
	byProduct map[string]*entity.RemoteTrade
}

func NewMemoryRemoteTradeRepository() repository.RemoteTradeRepository {
	return &memoryRemoteTradeRepository{
		byProduct: make(map[string]*entity.RemoteTrade),
	}
}

func (r *memoryRemoteTradeRepository) GetOrCreate(ctx context.Context, candidate *entity.RemoteTrade) (*entity.RemoteTrade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byProduct[candidate.ProductID]; ok {
		return cloneRemoteTrade(existing), nil
	}

	if candidate.ID == "" {
		candidate.ID = uuid.New().String()
	}
	now := time.Now()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	r.byProduct[candidate.ProductID] = cloneRemoteTrade(candidate)
	return cloneRemoteTrade(candidate), nil
}

func (r *memoryRemoteTradeRepository) GetByProduct(ctx context.Context, productID string) (*entity.RemoteTrade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trade, ok := r.byProduct[productID]
	if !ok {
		return nil, errors.NotFound("Remote trade", nil)
	}
	return cloneRemoteTrade(trade), nil
}

func (r *memoryRemoteTradeRepository) Update(ctx context.Context, productID string, fn func(trade *entity.RemoteTrade) error) (*entity.RemoteTrade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byProduct[productID]
	if !ok {
		return nil, errors.NotFound("Remote trade", nil)
	}

	working := cloneRemoteTrade(current)
	if err := fn(working); err != nil {
		return nil, err
	}

	r.byProduct[productID] = working
	return cloneRemoteTrade(working), nil
}

func cloneRemoteTrade(t *entity.RemoteTrade) *entity.RemoteTrade {
	copied := *t
	copied.SellerStartedAt = cloneTime(t.SellerStartedAt)
	copied.BuyerPaidAt = cloneTime(t.BuyerPaidAt)
	copied.SellerCompletedAt = cloneTime(t.SellerCompletedAt)
	copied.BuyerCompletedAt = cloneTime(t.BuyerCompletedAt)
	return &copied
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
