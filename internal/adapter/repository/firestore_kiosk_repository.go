package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

const (
	kioskTransactionsCollection = "kiosk_transactions"
	kioskProductsCollection     = "kiosk_products"
)

// kioskProductIndex points at the newest transaction of a product. It is
// read inside every StartOrGet transaction so two sellers racing on the same
// product contend on one document.
type kioskProductIndex struct {
	SerialNumber string    `firestore:"serialNumber"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

type firestoreKioskTransactionRepository struct {
	client *firestore.Client
}

func NewFirestoreKioskTransactionRepository(client *firestore.Client) repository.KioskTransactionRepository {
	return &firestoreKioskTransactionRepository{
		client: client,
	}
}

func (r *firestoreKioskTransactionRepository) StartOrGet(ctx context.Context, candidate *entity.KioskTransaction, now time.Time) (*entity.KioskTransaction, bool, error) {
	indexRef := r.client.Collection(kioskProductsCollection).Doc(candidate.ProductID)
	serialRef := r.client.Collection(kioskTransactionsCollection).Doc(candidate.SerialNumber)

	var result *entity.KioskTransaction
	var created bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result, created = nil, false

		var expired *entity.KioskTransaction
		var expiredRef *firestore.DocumentRef

		indexDoc, err := tx.Get(indexRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			var index kioskProductIndex
			if err := indexDoc.DataTo(&index); err != nil {
				return err
			}

			currentRef := r.client.Collection(kioskTransactionsCollection).Doc(index.SerialNumber)
			currentDoc, err := tx.Get(currentRef)
			if err != nil {
				return err
			}
			var current entity.KioskTransaction
			if err := currentDoc.DataTo(&current); err != nil {
				return err
			}

			if current.IsExpired(now) {
				current.Status = entity.KioskStatusCancelled
				current.UpdatedAt = now
				expired, expiredRef = &current, currentRef
			} else if current.IsLive() {
				result = &current
				return nil
			}
		}

		if _, err := tx.Get(serialRef); err == nil {
			return errors.ConflictWith("Serial number already issued", repository.ErrSerialTaken)
		} else if status.Code(err) != codes.NotFound {
			return err
		}

		if expired != nil {
			if err := tx.Set(expiredRef, expired); err != nil {
				return err
			}
		}

		stored := *candidate
		if stored.ID == "" {
			stored.ID = uuid.New().String()
		}
		stored.CreatedAt = now
		stored.UpdatedAt = now

		if err := tx.Create(serialRef, stored); err != nil {
			return err
		}
		if err := tx.Set(indexRef, kioskProductIndex{SerialNumber: stored.SerialNumber, UpdatedAt: now}); err != nil {
			return err
		}

		result, created = &stored, true
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, false, errors.ConflictWith("Serial number already issued", repository.ErrSerialTaken)
		}
		if _, ok := errors.AsAppError(err); ok {
			return nil, false, err
		}
		return nil, false, errors.Internal("Failed to start kiosk transaction", err)
	}

	return result, created, nil
}

func (r *firestoreKioskTransactionRepository) GetBySerial(ctx context.Context, serial string) (*entity.KioskTransaction, error) {
	doc, err := r.client.Collection(kioskTransactionsCollection).Doc(serial).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Kiosk transaction", err)
		}
		return nil, errors.Internal("Failed to get kiosk transaction", err)
	}

	var tx entity.KioskTransaction
	if err := doc.DataTo(&tx); err != nil {
		return nil, errors.Internal("Failed to parse kiosk transaction data", err)
	}

	return &tx, nil
}

func (r *firestoreKioskTransactionRepository) GetLatestByProduct(ctx context.Context, productID string) (*entity.KioskTransaction, error) {
	doc, err := r.client.Collection(kioskProductsCollection).Doc(productID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Kiosk transaction", err)
		}
		return nil, errors.Internal("Failed to get kiosk product index", err)
	}

	var index kioskProductIndex
	if err := doc.DataTo(&index); err != nil {
		return nil, errors.Internal("Failed to parse kiosk product index", err)
	}

	return r.GetBySerial(ctx, index.SerialNumber)
}

func (r *firestoreKioskTransactionRepository) Update(ctx context.Context, serial string, fn func(tx *entity.KioskTransaction) error) (*entity.KioskTransaction, error) {
	docRef := r.client.Collection(kioskTransactionsCollection).Doc(serial)

	var result entity.KioskTransaction
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Kiosk transaction", err)
			}
			return err
		}

		var current entity.KioskTransaction
		if err := doc.DataTo(&current); err != nil {
			return err
		}

		if err := fn(&current); err != nil {
			return err
		}

		result = current
		return tx.Set(docRef, current)
	})
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to update kiosk transaction", err)
	}

	return &result, nil
}
