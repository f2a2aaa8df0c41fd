package repository

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type postgresCabinetRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCabinetRepository expects kiosk_cabinets to be seeded by EnsureSchema.
func NewPostgresCabinetRepository(pool *pgxpool.Pool) repository.CabinetRepository {
	return &postgresCabinetRepository{
		pool: pool,
	}
}

func (r *postgresCabinetRepository) Acquire(ctx context.Context, serial string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, errors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var cabinet int
	err = tx.QueryRow(ctx, `SELECT number FROM kiosk_cabinets WHERE serial_number = $1`, serial).Scan(&cabinet)
	if err == nil {
		return cabinet, nil
	}
	if !stderrors.Is(err, pgx.ErrNoRows) {
		return 0, errors.Internal("Failed to read cabinets", err)
	}

	err = tx.QueryRow(ctx,
		`SELECT number FROM kiosk_cabinets WHERE serial_number IS NULL
		 ORDER BY random() LIMIT 1 FOR UPDATE SKIP LOCKED`).Scan(&cabinet)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return 0, errors.ConflictWith("No cabinet available", repository.ErrNoCabinet)
		}
		return 0, errors.Internal("Failed to pick cabinet", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE kiosk_cabinets SET serial_number = $2, updated_at = now() WHERE number = $1`,
		cabinet, serial); err != nil {
		return 0, errors.Internal("Failed to assign cabinet", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Internal("Failed to commit transaction", err)
	}
	return cabinet, nil
}

func (r *postgresCabinetRepository) Release(ctx context.Context, cabinet int, serial string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE kiosk_cabinets SET serial_number = NULL, updated_at = now()
		 WHERE number = $1 AND serial_number = $2`, cabinet, serial)
	if err != nil {
		return errors.Internal("Failed to release cabinet", err)
	}
	return nil
}

func (r *postgresCabinetRepository) Occupancy(ctx context.Context) (map[int]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT number, serial_number FROM kiosk_cabinets WHERE serial_number IS NOT NULL`)
	if err != nil {
		return nil, errors.Internal("Failed to read cabinets", err)
	}
	defer rows.Close()

	occupied := make(map[int]string)
	for rows.Next() {
		var number int
		var serial string
		if err := rows.Scan(&number, &serial); err != nil {
			return nil, errors.Internal("Failed to parse cabinet row", err)
		}
		occupied[number] = serial
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate cabinets", err)
	}
	return occupied, nil
}
