package repository

import (
	"context"
	"sync"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewMemoryUserRepository() repository.UserRepository {
	return &memoryUserRepository{
		users: make(map[string]*entity.User),
	}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		return errors.BadRequest("User ID is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}
