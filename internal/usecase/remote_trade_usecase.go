package usecase

import (
	"context"
	"net/http"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

const CodeNotRemoteTrade = "NOT_REMOTE_TRADE"

type RemoteTradeUseCase struct {
	tradeRepo   repository.RemoteTradeRepository
	productRepo repository.ProductRepository
	events      EventPublisher
	now         func() time.Time
}

func NewRemoteTradeUseCase(
	tradeRepo repository.RemoteTradeRepository,
	productRepo repository.ProductRepository,
	events EventPublisher,
) *RemoteTradeUseCase {
	return &RemoteTradeUseCase{
		tradeRepo:   tradeRepo,
		productRepo: productRepo,
		events:      events,
		now:         time.Now,
	}
}

// GetOrCreate returns the product's trade session, opening one in PENDING with
// the product's current price on first access.
func (uc *RemoteTradeUseCase) GetOrCreate(ctx context.Context, productID string) (*entity.RemoteTrade, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.TradeMethod != entity.TradeMethodRemote {
		return nil, errors.New(CodeNotRemoteTrade, "Product is not listed for remote trade", http.StatusBadRequest, nil)
	}

	return uc.tradeRepo.GetOrCreate(ctx, &entity.RemoteTrade{
		ProductID:  product.ID,
		SellerID:   product.SellerID,
		Status:     entity.RemoteTradeStatusPending,
		FinalPrice: product.Price,
	})
}

func (uc *RemoteTradeUseCase) SellerStart(ctx context.Context, identity entity.Identity, productID string) (*entity.RemoteTrade, error) {
	return uc.apply(ctx, identity, productID, entity.RemoteActionSellerStart, nil)
}

// BuyerPay binds the first payer as the buyer. amount defaults to the frozen
// final price.
func (uc *RemoteTradeUseCase) BuyerPay(ctx context.Context, identity entity.Identity, productID string, amount *int64) (*entity.RemoteTrade, error) {
	if amount != nil && *amount <= 0 {
		return nil, errors.BadRequest("Amount must be greater than zero", nil)
	}

	return uc.apply(ctx, identity, productID, entity.RemoteActionBuyerPay, func(t *entity.RemoteTrade) {
		t.PaidAmount = t.FinalPrice
		if amount != nil {
			t.PaidAmount = *amount
		}
	})
}

func (uc *RemoteTradeUseCase) SellerComplete(ctx context.Context, identity entity.Identity, productID string) (*entity.RemoteTrade, error) {
	return uc.apply(ctx, identity, productID, entity.RemoteActionSellerComplete, nil)
}

// BuyerComplete closes the trade and marks the product sold out.
func (uc *RemoteTradeUseCase) BuyerComplete(ctx context.Context, identity entity.Identity, productID string) (*entity.RemoteTrade, error) {
	trade, err := uc.apply(ctx, identity, productID, entity.RemoteActionBuyerComplete, nil)
	if err != nil {
		return nil, err
	}

	if err := uc.productRepo.UpdateStatus(ctx, productID, entity.ProductStatusSoldOut); err != nil {
		logger.Error("Failed to mark product %s sold out: %v", productID, err)
	}
	return trade, nil
}

func (uc *RemoteTradeUseCase) apply(ctx context.Context, identity entity.Identity, productID string, action entity.RemoteTradeAction, mutate func(t *entity.RemoteTrade)) (*entity.RemoteTrade, error) {
	if _, err := uc.GetOrCreate(ctx, productID); err != nil {
		return nil, err
	}

	now := uc.now()
	trade, err := uc.tradeRepo.Update(ctx, productID, func(t *entity.RemoteTrade) error {
		if err := authorize(t, identity.UserID, action); err != nil {
			return err
		}
		if mutate != nil {
			mutate(t)
		}
		return t.Apply(action, now)
	})
	if err != nil {
		logger.LogTransitionError(logger.KindRemote, productID, string(action), err)
		return nil, err
	}

	logger.Info("Remote trade for product %s: %s -> %s", productID, action, trade.Status)
	uc.publish(trade, action)
	return trade, nil
}

// authorize runs before the state check so a stranger always gets Forbidden.
// The first payer is bound as the buyer here; the binding is discarded when
// the transition is rejected.
func authorize(t *entity.RemoteTrade, userID string, action entity.RemoteTradeAction) error {
	switch entity.RoleFor(action) {
	case entity.RoleSeller:
		if t.SellerID != userID {
			return errors.Forbidden("Only the seller can "+string(action), nil)
		}
	case entity.RoleBuyer:
		if action == entity.RemoteActionBuyerPay && t.BuyerID == "" {
			if t.SellerID == userID {
				return errors.Forbidden("Sellers cannot buy their own product", nil)
			}
			t.BuyerID = userID
			return nil
		}
		if t.BuyerID != userID {
			return errors.Forbidden("Only the buyer can "+string(action), nil)
		}
	}
	return nil
}

func (uc *RemoteTradeUseCase) publish(t *entity.RemoteTrade, action entity.RemoteTradeAction) {
	if uc.events == nil {
		return
	}
	uc.events.Publish(entity.TradeEvent{
		Kind:       entity.TradeKindRemote,
		Action:     string(action),
		ProductID:  t.ProductID,
		Status:     string(t.Status),
		SellerID:   t.SellerID,
		BuyerID:    t.BuyerID,
		OccurredAt: t.UpdatedAt,
	})
}
