package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okanin/payflow/internal/domain"
)

// IdempotencyRepository implements usecase.IdempotencyRepository over
// Postgres. The primary key on idempotency_key gives the atomic
// check-and-insert the reservation protocol needs.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// Reserve inserts a placeholder record unless a live one exists. An
// expired row under the same key is reclaimed in the same statement, so
// a key reused past its TTL behaves as a fresh key.
func (r *IdempotencyRepository) Reserve(ctx context.Context, record *domain.IdempotencyRecord) (bool, error) {
	query := `
		INSERT INTO idempotency_keys (idempotency_key, user_id, request_path, request_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (idempotency_key) DO UPDATE
		SET user_id       = EXCLUDED.user_id,
		    request_path  = EXCLUDED.request_path,
		    request_body  = EXCLUDED.request_body,
		    response_code = NULL,
		    response_body = NULL,
		    transfer_id   = NULL,
		    created_at    = EXCLUDED.created_at,
		    expires_at    = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= EXCLUDED.created_at
	`

	tag, err := r.pool.Exec(ctx, query,
		record.Key,
		record.UserID,
		record.RequestPath,
		record.RequestBody,
		record.CreatedAt,
		record.ExpiresAt,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// Find returns the live record for key, or (nil, nil) when none exists.
func (r *IdempotencyRepository) Find(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT idempotency_key, user_id, request_path, request_body,
		       response_code, response_body, transfer_id, created_at, expires_at
		FROM idempotency_keys
		WHERE idempotency_key = $1 AND expires_at > $2
	`

	var record domain.IdempotencyRecord

	err := r.pool.QueryRow(ctx, query, key, time.Now().UTC()).Scan(
		&record.Key,
		&record.UserID,
		&record.RequestPath,
		&record.RequestBody,
		&record.ResponseCode,
		&record.ResponseBody,
		&record.TransferID,
		&record.CreatedAt,
		&record.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Complete records the response on a reservation. The response_code
// guard makes the first writer win; later calls change nothing.
func (r *IdempotencyRepository) Complete(ctx context.Context, key string, code int, body []byte, transferID *string) error {
	query := `
		UPDATE idempotency_keys
		SET response_code = $2, response_body = $3, transfer_id = $4
		WHERE idempotency_key = $1 AND response_code IS NULL
	`

	_, err := r.pool.Exec(ctx, query, key, code, body, transferID)

	return err
}

// SweepExpired deletes records past their expiry.
func (r *IdempotencyRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
