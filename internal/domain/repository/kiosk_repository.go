package repository

import (
	"context"
	"time"

	"campusmarket/internal/domain/entity"
)

type KioskTransactionRepository interface {
	// StartOrGet returns the live transaction for candidate.ProductID, or
	// stores candidate when there is none. An expired WAITING transaction is
	// cancelled first and does not count as live. created is true only when
	// candidate was stored.
	StartOrGet(ctx context.Context, candidate *entity.KioskTransaction, now time.Time) (tx *entity.KioskTransaction, created bool, err error)

	GetBySerial(ctx context.Context, serial string) (*entity.KioskTransaction, error)

	// GetLatestByProduct returns the most recently created transaction for a product.
	GetLatestByProduct(ctx context.Context, productID string) (*entity.KioskTransaction, error)

	// Update runs fn on the current row under a transaction. If fn returns an
	// error nothing is written and the error is returned as is.
	Update(ctx context.Context, serial string, fn func(tx *entity.KioskTransaction) error) (*entity.KioskTransaction, error)
}

// CabinetRepository tracks which kiosk cabinet holds which transaction.
type CabinetRepository interface {
	// Acquire assigns a free cabinet to serial. Calling it again for the
	// same serial returns the cabinet it already holds.
	Acquire(ctx context.Context, serial string) (int, error)

	// Release frees cabinet if it is held by serial; otherwise it is a no-op.
	Release(ctx context.Context, cabinet int, serial string) error

	Occupancy(ctx context.Context) (map[int]string, error)
}
