package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

const messagesCollection = "messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection(messagesCollection).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	doc, err := r.client.Collection(messagesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreMessageRepository) ListRecent(ctx context.Context, productID string, limit int) ([]*entity.Message, error) {
	query := r.client.Collection(messagesCollection).
		Where("productId", "==", productID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var newestFirst []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for product %q: %v", productID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		newestFirst = append(newestFirst, &message)
	}

	messages := make([]*entity.Message, len(newestFirst))
	for i, m := range newestFirst {
		messages[len(newestFirst)-1-i] = m
	}
	return messages, nil
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, messageID, userID string) (bool, error) {
	docRef := r.client.Collection(messagesCollection).Doc(messageID)

	var changed bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = false

		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Message", err)
			}
			return err
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return err
		}
		if message.IsReadBy(userID) {
			return nil
		}

		changed = true
		return tx.Update(docRef, []firestore.Update{
			{Path: "readBy", Value: firestore.ArrayUnion(userID)},
		})
	})
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return false, err
		}
		return false, errors.Internal("Failed to update message read status", err)
	}

	return changed, nil
}
