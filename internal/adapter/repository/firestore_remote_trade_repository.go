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

const remoteTradesCollection = "remote_trades"

// Sessions are keyed by product id, which makes the one-session-per-product
// rule a property of the document path.
type firestoreRemoteTradeRepository struct {
	client *firestore.Client
}

func NewFirestoreRemoteTradeRepository(client *firestore.Client) repository.RemoteTradeRepository {
	return &firestoreRemoteTradeRepository{
		client: client,
	}
}

func (r *firestoreRemoteTradeRepository) GetOrCreate(ctx context.Context, candidate *entity.RemoteTrade) (*entity.RemoteTrade, error) {
	docRef := r.client.Collection(remoteTradesCollection).Doc(candidate.ProductID)

	var result entity.RemoteTrade
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil {
			return doc.DataTo(&result)
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		result = *candidate
		if result.ID == "" {
			result.ID = uuid.New().String()
		}
		now := time.Now()
		result.CreatedAt = now
		result.UpdatedAt = now

		return tx.Create(docRef, result)
	})
	if err != nil {
		return nil, errors.Internal("Failed to get or create remote trade", err)
	}

	return &result, nil
}

func (r *firestoreRemoteTradeRepository) GetByProduct(ctx context.Context, productID string) (*entity.RemoteTrade, error) {
	doc, err := r.client.Collection(remoteTradesCollection).Doc(productID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Remote trade", err)
		}
		return nil, errors.Internal("Failed to get remote trade", err)
	}

	var trade entity.RemoteTrade
	if err := doc.DataTo(&trade); err != nil {
		return nil, errors.Internal("Failed to parse remote trade data", err)
	}

	return &trade, nil
}

func (r *firestoreRemoteTradeRepository) Update(ctx context.Context, productID string, fn func(trade *entity.RemoteTrade) error) (*entity.RemoteTrade, error) {
	docRef := r.client.Collection(remoteTradesCollection).Doc(productID)

	var result entity.RemoteTrade
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Remote trade", err)
			}
			return err
		}

		var current entity.RemoteTrade
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
		return nil, errors.Internal("Failed to update remote trade", err)
	}

	return &result, nil
}
