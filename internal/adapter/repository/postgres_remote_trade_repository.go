package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

const remoteTradeColumns = `id, product_id, seller_id, COALESCE(buyer_id, ''), status, final_price, paid_amount,
	seller_started_at, buyer_paid_at, seller_completed_at, buyer_completed_at, created_at, updated_at`

type postgresRemoteTradeRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRemoteTradeRepository(pool *pgxpool.Pool) repository.RemoteTradeRepository {
	return &postgresRemoteTradeRepository{
		pool: pool,
	}
}

func scanRemoteTrade(row pgx.Row) (*entity.RemoteTrade, error) {
	var t entity.RemoteTrade
	var status string
	err := row.Scan(&t.ID, &t.ProductID, &t.SellerID, &t.BuyerID, &status, &t.FinalPrice, &t.PaidAmount,
		&t.SellerStartedAt, &t.BuyerPaidAt, &t.SellerCompletedAt, &t.BuyerCompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = entity.RemoteTradeStatus(status)
	return &t, nil
}

func (r *postgresRemoteTradeRepository) GetOrCreate(ctx context.Context, candidate *entity.RemoteTrade) (*entity.RemoteTrade, error) {
	id := candidate.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO remote_trades (id, product_id, seller_id, status, final_price, paid_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
		 ON CONFLICT (product_id) DO NOTHING`,
		id, candidate.ProductID, candidate.SellerID, string(candidate.Status), candidate.FinalPrice, now)
	if err != nil {
		return nil, errors.Internal("Failed to create remote trade", err)
	}

	return r.GetByProduct(ctx, candidate.ProductID)
}

func (r *postgresRemoteTradeRepository) GetByProduct(ctx context.Context, productID string) (*entity.RemoteTrade, error) {
	trade, err := scanRemoteTrade(r.pool.QueryRow(ctx,
		`SELECT `+remoteTradeColumns+` FROM remote_trades WHERE product_id = $1`, productID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Remote trade", err)
		}
		return nil, errors.Internal("Failed to get remote trade", err)
	}
	return trade, nil
}

func (r *postgresRemoteTradeRepository) Update(ctx context.Context, productID string, fn func(trade *entity.RemoteTrade) error) (*entity.RemoteTrade, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanRemoteTrade(tx.QueryRow(ctx,
		`SELECT `+remoteTradeColumns+` FROM remote_trades WHERE product_id = $1 FOR UPDATE`, productID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Remote trade", err)
		}
		return nil, errors.Internal("Failed to get remote trade", err)
	}

	if err := fn(current); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE remote_trades SET buyer_id = NULLIF($2, ''), status = $3, paid_amount = $4,
		 seller_started_at = $5, buyer_paid_at = $6, seller_completed_at = $7, buyer_completed_at = $8, updated_at = $9
		 WHERE product_id = $1`,
		productID, current.BuyerID, string(current.Status), current.PaidAmount,
		current.SellerStartedAt, current.BuyerPaidAt, current.SellerCompletedAt, current.BuyerCompletedAt, current.UpdatedAt)
	if err != nil {
		return nil, errors.Internal("Failed to update remote trade", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Internal("Failed to commit transaction", err)
	}
	return current, nil
}
