package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okanin/payflow/internal/domain"
	"github.com/okanin/payflow/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

const transferColumns = `id, sender_id, recipient_id, amount, description, status, idempotency_key, created_at`

// Create inserts a transfer row inside the caller's transaction.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transfers (id, sender_id, recipient_id, amount, description, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		transfer.ID,
		transfer.SenderID,
		transfer.RecipientID,
		decimalToNumeric(transfer.Amount),
		transfer.Description,
		string(transfer.Status),
		transfer.IdempotencyKey,
		transfer.CreatedAt,
	)

	return err
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	transfer, err := scanTransfer(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransferNotFound
	}

	return transfer, err
}

// ListByAccount lists transfers where the account is sender or
// recipient, newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := make([]*domain.Transfer, 0)

	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}

		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

// StatsByAccount aggregates an account's transfer activity.
func (r *TransferRepository) StatsByAccount(ctx context.Context, accountID string) (*domain.TransferStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN sender_id = $1 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN recipient_id = $1 THEN amount ELSE 0 END), 0)
		FROM transfers
		WHERE sender_id = $1 OR recipient_id = $1
	`

	var (
		stats    domain.TransferStats
		sent     pgtype.Numeric
		received pgtype.Numeric
	)

	err := r.pool.QueryRow(ctx, query, accountID).Scan(&stats.TotalTransfers, &sent, &received)
	if err != nil {
		return nil, err
	}

	stats.TotalSent = numericToDecimal(sent)
	stats.TotalReceived = numericToDecimal(received)

	return &stats, nil
}

func scanTransfer(row rowScanner) (*domain.Transfer, error) {
	var (
		transfer domain.Transfer
		amount   pgtype.Numeric
		status   string
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.SenderID,
		&transfer.RecipientID,
		&amount,
		&transfer.Description,
		&status,
		&transfer.IdempotencyKey,
		&transfer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	transfer.Amount = numericToDecimal(amount)
	transfer.Status = domain.TransferStatus(status)

	return &transfer, nil
}
