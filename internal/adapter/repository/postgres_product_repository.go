package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type postgresProductRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepository(pool *pgxpool.Pool) repository.ProductRepository {
	return &postgresProductRepository{
		pool: pool,
	}
}

func (r *postgresProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, seller_id, name, price, status, trade_method, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		product.ID, product.SellerID, product.Name, product.Price, product.Status, product.TradeMethod, now)
	if err != nil {
		return errors.Internal("Failed to create product", err)
	}
	return nil
}

func (r *postgresProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, seller_id, name, price, status, trade_method, created_at, updated_at
		 FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.SellerID, &p.Name, &p.Price, &p.Status, &p.TradeMethod, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Product", err)
		}
		return nil, errors.Internal("Failed to get product", err)
	}
	return &p, nil
}

func (r *postgresProductRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return errors.Internal("Failed to update product status", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("Product", nil)
	}
	return nil
}
