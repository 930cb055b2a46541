package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okanin/payflow/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// AccountDirectory resolves an external account identifier (email) to
// the account it belongs to.
type AccountDirectory interface {
	ResolveEmail(ctx context.Context, email string) (*domain.Account, error)
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
	StatsByAccount(ctx context.Context, accountID string) (*domain.TransferStats, error)
}

// IdempotencyRepository defines data access for idempotency records.
type IdempotencyRepository interface {
	// Find returns the live record for key, or (nil, nil) when no
	// non-expired record exists.
	Find(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
	// Reserve atomically inserts a placeholder record unless a live one
	// already exists. It returns true when this caller created the
	// reservation; two callers racing on a brand-new key see exactly one
	// true between them.
	Reserve(ctx context.Context, record *domain.IdempotencyRecord) (bool, error)
	// Complete records the response on an existing reservation. First
	// writer wins; later calls for the same key are no-ops.
	Complete(ctx context.Context, key string, code int, body []byte, transferID *string) error
	// SweepExpired deletes records past their expiry and returns how many
	// were removed.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier reruns an operation when it fails with a transient storage
// error, such as a deadlock or serialization failure.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
