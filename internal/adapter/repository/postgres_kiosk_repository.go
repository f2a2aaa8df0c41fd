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

const kioskColumns = `id, serial_number, product_id, seller_id, COALESCE(buyer_id, ''),
	COALESCE(cabinet_number, 0), status, created_at, updated_at, expires_at`

type postgresKioskTransactionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresKioskTransactionRepository(pool *pgxpool.Pool) repository.KioskTransactionRepository {
	return &postgresKioskTransactionRepository{
		pool: pool,
	}
}

func scanKiosk(row pgx.Row) (*entity.KioskTransaction, error) {
	var tx entity.KioskTransaction
	var status string
	err := row.Scan(&tx.ID, &tx.SerialNumber, &tx.ProductID, &tx.SellerID, &tx.BuyerID,
		&tx.CabinetNumber, &status, &tx.CreatedAt, &tx.UpdatedAt, &tx.ExpiresAt)
	if err != nil {
		return nil, err
	}
	tx.Status = entity.KioskStatus(status)
	return &tx, nil
}

func (r *postgresKioskTransactionRepository) StartOrGet(ctx context.Context, candidate *entity.KioskTransaction, now time.Time) (*entity.KioskTransaction, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, errors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// serializes concurrent starts for one product
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, candidate.ProductID); err != nil {
		return nil, false, errors.Internal("Failed to lock product", err)
	}

	current, err := scanKiosk(tx.QueryRow(ctx,
		`SELECT `+kioskColumns+` FROM kiosk_transactions
		 WHERE product_id = $1 AND status <> 'CANCELLED' FOR UPDATE`, candidate.ProductID))
	switch {
	case err == nil && current.IsExpired(now):
		if _, err := tx.Exec(ctx,
			`UPDATE kiosk_transactions SET status = 'CANCELLED', updated_at = $2 WHERE serial_number = $1`,
			current.SerialNumber, now); err != nil {
			return nil, false, errors.Internal("Failed to cancel expired kiosk transaction", err)
		}
	case err == nil:
		if err := tx.Commit(ctx); err != nil {
			return nil, false, errors.Internal("Failed to commit transaction", err)
		}
		return current, false, nil
	case !stderrors.Is(err, pgx.ErrNoRows):
		return nil, false, errors.Internal("Failed to get kiosk transaction", err)
	}

	stored := *candidate
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err = tx.Exec(ctx,
		`INSERT INTO kiosk_transactions
		 (id, serial_number, product_id, seller_id, buyer_id, cabinet_number, status, created_at, updated_at, expires_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 0), $7, $8, $9, $10)`,
		stored.ID, stored.SerialNumber, stored.ProductID, stored.SellerID, stored.BuyerID,
		stored.CabinetNumber, string(stored.Status), stored.CreatedAt, stored.UpdatedAt, stored.ExpiresAt)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgUniqueViolation && constraint == "kiosk_transactions_pkey" {
			return nil, false, errors.ConflictWith("Serial number already issued", repository.ErrSerialTaken)
		}
		return nil, false, errors.Internal("Failed to create kiosk transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, errors.Internal("Failed to commit transaction", err)
	}
	return &stored, true, nil
}

func (r *postgresKioskTransactionRepository) GetBySerial(ctx context.Context, serial string) (*entity.KioskTransaction, error) {
	tx, err := scanKiosk(r.pool.QueryRow(ctx,
		`SELECT `+kioskColumns+` FROM kiosk_transactions WHERE serial_number = $1`, serial))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Kiosk transaction", err)
		}
		return nil, errors.Internal("Failed to get kiosk transaction", err)
	}
	return tx, nil
}

func (r *postgresKioskTransactionRepository) GetLatestByProduct(ctx context.Context, productID string) (*entity.KioskTransaction, error) {
	tx, err := scanKiosk(r.pool.QueryRow(ctx,
		`SELECT `+kioskColumns+` FROM kiosk_transactions
		 WHERE product_id = $1 ORDER BY created_at DESC LIMIT 1`, productID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Kiosk transaction", err)
		}
		return nil, errors.Internal("Failed to get kiosk transaction", err)
	}
	return tx, nil
}

func (r *postgresKioskTransactionRepository) Update(ctx context.Context, serial string, fn func(tx *entity.KioskTransaction) error) (*entity.KioskTransaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanKiosk(tx.QueryRow(ctx,
		`SELECT `+kioskColumns+` FROM kiosk_transactions WHERE serial_number = $1 FOR UPDATE`, serial))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Kiosk transaction", err)
		}
		return nil, errors.Internal("Failed to get kiosk transaction", err)
	}

	if err := fn(current); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE kiosk_transactions
		 SET buyer_id = NULLIF($2, ''), cabinet_number = NULLIF($3, 0), status = $4, updated_at = $5
		 WHERE serial_number = $1`,
		serial, current.BuyerID, current.CabinetNumber, string(current.Status), current.UpdatedAt)
	if err != nil {
		return nil, errors.Internal("Failed to update kiosk transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Internal("Failed to commit transaction", err)
	}
	return current, nil
}
