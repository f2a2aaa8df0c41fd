package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)

	// ListRecent returns the newest limit messages of a product conversation
	// ordered oldest first. An empty productID selects the global room.
	ListRecent(ctx context.Context, productID string, limit int) ([]*entity.Message, error)

	// MarkRead adds userID to the readers of a message. changed is false when
	// the user had already read it.
	MarkRead(ctx context.Context, messageID, userID string) (changed bool, err error)
}
