package repository

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type postgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &postgresUserRepository{
		pool: pool,
	}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *entity.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, nickname) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, nickname = EXCLUDED.nickname, updated_at = now()
		 RETURNING created_at, updated_at`,
		user.ID, user.Username, user.Nickname).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, nickname, created_at, updated_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.Nickname, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}
	return &u, nil
}
