package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type RemoteTradeRepository interface {
	// GetOrCreate returns the session for candidate.ProductID, storing
	// candidate if none exists yet.
	GetOrCreate(ctx context.Context, candidate *entity.RemoteTrade) (*entity.RemoteTrade, error)
	GetByProduct(ctx context.Context, productID string) (*entity.RemoteTrade, error)
	Update(ctx context.Context, productID string, fn func(trade *entity.RemoteTrade) error) (*entity.RemoteTrade, error)
}
