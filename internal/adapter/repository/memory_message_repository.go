package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type memoryMessageRepository struct {
	mu       sync.Mutex
	messages map[string]*entity.Message
	order    []string // insertion order, ties on CreatedAt keep it
}

func NewMemoryMessageRepository() repository.MessageRepository {
	return &memoryMessageRepository{
		messages: make(map[string]*entity.Message),
	}
}

func (r *memoryMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	r.messages[message.ID] = cloneMessage(message)
	r.order = append(r.order, message.ID)
	return nil
}

func (r *memoryMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	return cloneMessage(message), nil
}

func (r *memoryMessageRepository) ListRecent(ctx context.Context, productID string, limit int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Message
	for _, id := range r.order {
		if m := r.messages[id]; m.ProductID == productID {
			matched = append(matched, cloneMessage(m))
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

func (r *memoryMessageRepository) MarkRead(ctx context.Context, messageID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[messageID]
	if !ok {
		return false, errors.NotFound("Message", nil)
	}
	if message.IsReadBy(userID) {
		return false, nil
	}
	message.ReadBy = append(message.ReadBy, userID)
	return true, nil
}

func cloneMessage(m *entity.Message) *entity.Message {
	copied := *m
	copied.ReadBy = append([]string(nil), m.ReadBy...)
	return &copied
}
