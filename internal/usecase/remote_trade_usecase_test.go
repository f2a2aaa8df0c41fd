package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/adapter/repository"
	"campusmarket/internal/domain/entity"
	domainrepo "campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

func newRemoteFixture(t *testing.T) (*RemoteTradeUseCase, domainrepo.ProductRepository, *recordingPublisher) {
	t.Helper()
	ctx := context.Background()

	products := repository.NewMemoryProductRepository()
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "p1", SellerID: "seller", Name: "calculus textbook", Price: 12000,
		Status: entity.ProductStatusOnSale, TradeMethod: entity.TradeMethodRemote,
	}))
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "kiosk-only", SellerID: "seller", Name: "monitor", Price: 50000,
		Status: entity.ProductStatusOnSale, TradeMethod: entity.TradeMethodKiosk,
	}))

	events := &recordingPublisher{}
	uc := NewRemoteTradeUseCase(repository.NewMemoryRemoteTradeRepository(), products, events)
	uc.now = newFakeClock().Now
	return uc, products, events
}

func TestRemoteTradeFullFlow(t *testing.T) {
	ctx := context.Background()
	uc, products, events := newRemoteFixture(t)
	seller, buyer := identityOf("seller"), identityOf("buyer")

	trade, err := uc.GetOrCreate(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.RemoteTradeStatusPending, trade.Status)
	assert.Equal(t, int64(12000), trade.FinalPrice)

	// price is frozen at creation
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "p1", SellerID: "seller", Price: 99999, Status: entity.ProductStatusOnSale, TradeMethod: entity.TradeMethodRemote,
	}))

	trade, err = uc.SellerStart(ctx, seller, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.RemoteTradeStatusSellerReady, trade.Status)
	assert.NotNil(t, trade.SellerStartedAt)

	trade, err = uc.BuyerPay(ctx, buyer, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.RemoteTradeStatusBuyerPaid, trade.Status)
	assert.Equal(t, "buyer", trade.BuyerID)
	assert.Equal(t, int64(12000), trade.PaidAmount)

	trade, err = uc.SellerComplete(ctx, seller, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.RemoteTradeStatusSellerCompleted, trade.Status)

	trade, err = uc.BuyerComplete(ctx, buyer, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.RemoteTradeStatusCompleted, trade.Status)
	assert.NotNil(t, trade.BuyerCompletedAt)

	product, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, product.IsSoldOut())

	_, err = uc.BuyerComplete(ctx, buyer, "p1")
	assert.True(t, errors.Is(err, errors.CodeInvalidState))

	assert.Equal(t, []string{"seller start", "buyer pay", "seller complete", "buyer complete"}, events.Actions())
}

func TestRemoteTradeRejectsNonRemoteProducts(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newRemoteFixture(t)

	_, err := uc.GetOrCreate(ctx, "kiosk-only")
	assert.True(t, errors.Is(err, CodeNotRemoteTrade))

	_, err = uc.SellerStart(ctx, identityOf("seller"), "kiosk-only")
	assert.True(t, errors.Is(err, CodeNotRemoteTrade))

	_, err = uc.GetOrCreate(ctx, "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestRemoteTradeForbiddenBeforeInvalidState(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newRemoteFixture(t)

	// PENDING: a stranger is told they are not the seller, not that the state is wrong
	_, err := uc.SellerComplete(ctx, identityOf("stranger"), "p1")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = uc.SellerComplete(ctx, identityOf("seller"), "p1")
	assert.True(t, errors.Is(err, errors.CodeInvalidState))

	_, err = uc.BuyerComplete(ctx, identityOf("stranger"), "p1")
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestRemoteTradeBuyerBindingNeedsCommittedTransition(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newRemoteFixture(t)

	_, err := uc.BuyerPay(ctx, identityOf("early"), "p1", nil)
	assert.True(t, errors.Is(err, errors.CodeInvalidState))

	_, err = uc.SellerStart(ctx, identityOf("seller"), "p1")
	require.NoError(t, err)

	amount := int64(11000)
	trade, err := uc.BuyerPay(ctx, identityOf("late"), "p1", &amount)
	require.NoError(t, err)
	assert.Equal(t, "late", trade.BuyerID)
	assert.Equal(t, int64(11000), trade.PaidAmount)

	_, err = uc.BuyerPay(ctx, identityOf("early"), "p1", nil)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = uc.SellerStart(ctx, identityOf("seller"), "p1")
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
}

func TestRemoteTradeBuyerPayValidation(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newRemoteFixture(t)

	_, err := uc.SellerStart(ctx, identityOf("seller"), "p1")
	require.NoError(t, err)

	zero := int64(0)
	_, err = uc.BuyerPay(ctx, identityOf("buyer"), "p1", &zero)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = uc.BuyerPay(ctx, identityOf("seller"), "p1", nil)
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestRemoteTradeConcurrentBuyerPayBindsOneBuyer(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newRemoteFixture(t)

	_, err := uc.SellerStart(ctx, identityOf("seller"), "p1")
	require.NoError(t, err)

	const buyers = 10
	results := make(chan error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.BuyerPay(ctx, identityOf(string(rune('a'+i))), "p1", nil)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, errors.CodeForbidden), "loser got %v", err)
	}
	assert.Equal(t, 1, wins)
}
