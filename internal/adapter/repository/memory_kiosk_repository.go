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

type memoryKioskTransactionRepository struct {
	mu       sync.Mutex
	bySerial map[string]*entity.KioskTransaction
	latest   map[string]string // productId -> serial
}

func NewMemoryKioskTransactionRepository() repository.KioskTransactionRepository {
	return &memoryKioskTransactionRepository{
		bySerial: make(map[string]*entity.KioskTransaction),
		latest:   make(map[string]string),
	}
}

func (r *memoryKioskTransactionRepository) StartOrGet(ctx context.Context, candidate *entity.KioskTransaction, now time.Time) (*entity.KioskTransaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if serial, ok := r.latest[candidate.ProductID]; ok {
		current := r.bySerial[serial]
		if current.IsExpired(now) {
			current.Status = entity.KioskStatusCancelled
			current.UpdatedAt = now
		}
		if current.IsLive() {
			copied := *current
			return &copied, false, nil
		}
	}

	if _, taken := r.bySerial[candidate.SerialNumber]; taken {
		return nil, false, errors.ConflictWith("Serial number already issued", repository.ErrSerialTaken)
	}

	if candidate.ID == "" {
		candidate.ID = uuid.New().String()
	}
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	stored := *candidate
	r.bySerial[stored.SerialNumber] = &stored
	r.latest[stored.ProductID] = stored.SerialNumber

	copied := stored
	return &copied, true, nil
}

func (r *memoryKioskTransactionRepository) GetBySerial(ctx context.Context, serial string) (*entity.KioskTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.bySerial[serial]
	if !ok {
		return nil, errors.NotFound("Kiosk transaction", nil)
	}
	copied := *tx
	return &copied, nil
}

func (r *memoryKioskTransactionRepository) GetLatestByProduct(ctx context.Context, productID string) (*entity.KioskTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	serial, ok := r.latest[productID]
	if !ok {
		return nil, errors.NotFound("Kiosk transaction", nil)
	}
	copied := *r.bySerial[serial]
	return &copied, nil
}

func (r *memoryKioskTransactionRepository) Update(ctx context.Context, serial string, fn func(tx *entity.KioskTransaction) error) (*entity.KioskTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.bySerial[serial]
	if !ok {
		return nil, errors.NotFound("Kiosk transaction", nil)
	}

	working := *current
	if err := fn(&working); err != nil {
		return nil, err
	}

	*current = working
	copied := working
	return &copied, nil
}
