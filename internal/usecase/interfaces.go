package usecase

import (
	"context"

	"campusmarket/internal/domain/entity"
)

// TokenVerifier checks a bearer token and returns the user id it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type EventPublisher interface {
	Publish(event entity.TradeEvent)
}

type EventSubscriber interface {
	Subscribe() (<-chan entity.TradeEvent, func())
}
