package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okanin/payflow/internal/domain"
	"github.com/okanin/payflow/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return nil, nil
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

// MockTransferRepository is a mock implementation of TransferRepository.
type MockTransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.Transfer

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Transfer, error)
	ListByAccountFunc  func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
	StatsByAccountFunc func(ctx context.Context, accountID string) (*domain.TransferStats, error)
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers: make(map[string]*domain.Transfer),
	}
}

func (m *MockTransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transfers[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransferNotFound
}

func (m *MockTransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transfers []*domain.Transfer
	for _, t := range m.transfers {
		if t.Involves(accountID) {
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}

func (m *MockTransferRepository) StatsByAccount(ctx context.Context, accountID string) (*domain.TransferStats, error) {
	if m.StatsByAccountFunc != nil {
		return m.StatsByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &domain.TransferStats{
		TotalSent:     decimal.Zero,
		TotalReceived: decimal.Zero,
	}
	for _, t := range m.transfers {
		switch accountID {
		case t.SenderID:
			stats.TotalTransfers++
			stats.TotalSent = stats.TotalSent.Add(t.Amount)
		case t.RecipientID:
			stats.TotalTransfers++
			stats.TotalReceived = stats.TotalReceived.Add(t.Amount)
		}
	}
	return stats, nil
}

// MockIdempotencyRepository is an in-memory mock implementation of
// IdempotencyRepository.
type MockIdempotencyRepository struct {
	mu      sync.Mutex
	records map[string]*domain.IdempotencyRecord

	FindFunc         func(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
	ReserveFunc      func(ctx context.Context, record *domain.IdempotencyRecord) (bool, error)
	CompleteFunc     func(ctx context.Context, key string, code int, body []byte, transferID *string) error
	SweepExpiredFunc func(ctx context.Context, now time.Time) (int64, error)
}

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{
		records: make(map[string]*domain.IdempotencyRecord),
	}
}

func (m *MockIdempotencyRepository) Find(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok || rec.Expired(time.Now()) {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (m *MockIdempotencyRepository) Reserve(ctx context.Context, record *domain.IdempotencyRecord) (bool, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[record.Key]; ok && !existing.Expired(record.CreatedAt) {
		return false, nil
	}
	clone := *record
	m.records[record.Key] = &clone
	return true, nil
}

func (m *MockIdempotencyRepository) Complete(ctx context.Context, key string, code int, body []byte, transferID *string) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, key, code, body, transferID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok || rec.ResponseCode != nil {
		return nil
	}
	rec.ResponseCode = &code
	rec.ResponseBody = body
	rec.TransferID = transferID
	return nil
}

func (m *MockIdempotencyRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.SweepExpiredFunc != nil {
		return m.SweepExpiredFunc(ctx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for key, rec := range m.records {
		if rec.Expired(now) {
			delete(m.records, key)
			count++
		}
	}
	return count, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockRetrier is a mock implementation of Retrier that runs the
// operation once without retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
