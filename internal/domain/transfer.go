package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a transfer.
type TransferStatus string

const (
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusFailed    TransferStatus = "failed"
)

// Transfer is an immutable record of money moved between two accounts.
type Transfer struct {
	ID             string
	SenderID       string
	RecipientID    string
	Amount         decimal.Decimal
	Description    string
	Status         TransferStatus
	IdempotencyKey *string
	CreatedAt      time.Time
}

// Validate checks the transfer invariants that hold regardless of balances.
func (t *Transfer) Validate() error {
	if t.SenderID == t.RecipientID {
		return ErrSelfTransfer
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// Involves reports whether accountID is the sender or the recipient.
func (t *Transfer) Involves(accountID string) bool {
	return t.SenderID == accountID || t.RecipientID == accountID
}

// TransferStats aggregates an account's transfer activity.
type TransferStats struct {
	TotalTransfers int64
	TotalSent      decimal.Decimal
	TotalReceived  decimal.Decimal
}

// NetFlow is total received minus total sent.
func (s *TransferStats) NetFlow() decimal.Decimal {
	return s.TotalReceived.Sub(s.TotalSent)
}
