package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"campusmarket/pkg/logger"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Bootstrap DDL only; there is no migration history.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL,
		nickname   TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id           TEXT PRIMARY KEY,
		seller_id    TEXT NOT NULL,
		name         TEXT NOT NULL,
		price        BIGINT NOT NULL,
		status       TEXT NOT NULL,
		trade_method TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS kiosk_transactions (
		serial_number  CHAR(6) PRIMARY KEY,
		id             TEXT NOT NULL UNIQUE,
		product_id     TEXT NOT NULL,
		seller_id      TEXT NOT NULL,
		buyer_id       TEXT,
		cabinet_number INT,
		status         TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL,
		expires_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS kiosk_transactions_live_product
		ON kiosk_transactions (product_id) WHERE status <> 'CANCELLED'`,
	`CREATE INDEX IF NOT EXISTS kiosk_transactions_product_created
		ON kiosk_transactions (product_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS kiosk_cabinets (
		number        INT PRIMARY KEY,
		serial_number CHAR(6),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS remote_trades (
		product_id          TEXT PRIMARY KEY,
		id                  TEXT NOT NULL UNIQUE,
		seller_id           TEXT NOT NULL,
		buyer_id            TEXT,
		status              TEXT NOT NULL,
		final_price         BIGINT NOT NULL,
		paid_amount         BIGINT NOT NULL DEFAULT 0,
		seller_started_at   TIMESTAMPTZ,
		buyer_paid_at       TIMESTAMPTZ,
		seller_completed_at TIMESTAMPTZ,
		buyer_completed_at  TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		author_id  TEXT NOT NULL,
		nickname   TEXT NOT NULL,
		content    TEXT NOT NULL,
		product_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS messages_product_created
		ON messages (product_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS message_reads (
		message_id TEXT NOT NULL REFERENCES messages (id),
		user_id    TEXT NOT NULL,
		read_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (message_id, user_id)
	)`,
}

// NewPostgresPool connects and pings, mirroring the pool setup used for the API.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("Connected to postgres (max %d connections)", poolConfig.MaxConns)
	return pool, nil
}

// EnsureSchema creates missing tables and seeds cabinetCount cabinet rows.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, cabinetCount int) error {
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO kiosk_cabinets (number) SELECT generate_series(1, $1) ON CONFLICT DO NOTHING`,
		cabinetCount)
	if err != nil {
		return fmt.Errorf("seed cabinets: %w", err)
	}
	return nil
}

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
