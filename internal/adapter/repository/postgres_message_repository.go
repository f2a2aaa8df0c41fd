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

const messageColumns = `m.id, m.author_id, m.nickname, m.content, m.product_id, m.created_at,
	ARRAY(SELECT r.user_id FROM message_reads r WHERE r.message_id = m.id ORDER BY r.read_at)`

type postgresMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresMessageRepository(pool *pgxpool.Pool) repository.MessageRepository {
	return &postgresMessageRepository{
		pool: pool,
	}
}

func scanMessage(row pgx.Row) (*entity.Message, error) {
	var m entity.Message
	if err := row.Scan(&m.ID, &m.AuthorID, &m.Nickname, &m.Content, &m.ProductID, &m.CreatedAt, &m.ReadBy); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, author_id, nickname, content, product_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		message.ID, message.AuthorID, message.Nickname, message.Content, message.ProductID, message.CreatedAt)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	for _, reader := range message.ReadBy {
		if _, err := tx.Exec(ctx,
			`INSERT INTO message_reads (message_id, user_id, read_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			message.ID, reader, message.CreatedAt); err != nil {
			return errors.Internal("Failed to record message reader", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Internal("Failed to commit transaction", err)
	}
	return nil
}

func (r *postgresMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	message, err := scanMessage(r.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages m WHERE m.id = $1`, id))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}
	return message, nil
}

func (r *postgresMessageRepository) ListRecent(ctx context.Context, productID string, limit int) ([]*entity.Message, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT * FROM (
			SELECT `+messageColumns+` FROM messages m
			WHERE m.product_id = $1 ORDER BY m.created_at DESC LIMIT $2
		 ) recent ORDER BY created_at ASC`, productID, limit)
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, errors.Internal("Failed to parse message row", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate messages", err)
	}
	return messages, nil
}

func (r *postgresMessageRepository) MarkRead(ctx context.Context, messageID, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO message_reads (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		messageID, userID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return false, errors.NotFound("Message", err)
		}
		return false, errors.Internal("Failed to update message read status", err)
	}
	return tag.RowsAffected() == 1, nil
}
