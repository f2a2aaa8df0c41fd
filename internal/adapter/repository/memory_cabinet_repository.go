package repository

import (
	"context"
	"math/rand/v2"
	"sync"

	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type memoryCabinetRepository struct {
	mu      sync.Mutex
	holders []string // index i holds cabinet i+1
}

func NewMemoryCabinetRepository(count int) repository.CabinetRepository {
	return &memoryCabinetRepository{
		holders: make([]string, count),
	}
}

func (r *memoryCabinetRepository) Acquire(ctx context.Context, serial string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	free := make([]int, 0, len(r.holders))
	for i, holder := range r.holders {
		if holder == serial {
			return i + 1, nil
		}
		if holder == "" {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return 0, errors.ConflictWith("No cabinet available", repository.ErrNoCabinet)
	}

	picked := free[rand.IntN(len(free))]
	r.holders[picked] = serial
	return picked + 1, nil
}

func (r *memoryCabinetRepository) Release(ctx context.Context, cabinet int, serial string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cabinet < 1 || cabinet > len(r.holders) {
		return errors.BadRequest("cabinet number out of range", nil)
	}
	if r.holders[cabinet-1] == serial {
		r.holders[cabinet-1] = ""
	}
	return nil
}

func (r *memoryCabinetRepository) Occupancy(ctx context.Context) (map[int]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	occupied := make(map[int]string)
	for i, holder := range r.holders {
		if holder != "" {
			occupied[i+1] = holder
		}
	}
	return occupied, nil
}
