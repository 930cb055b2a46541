package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/okanin/payflow/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	Token   string           `json:"token"`
	Account *AccountResponse `json:"account"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID          string          `json:"id"`
	SenderID    string          `json:"sender_id"`
	RecipientID string          `json:"recipient_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransferFromDomain converts a domain transfer to a response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:          t.ID,
		SenderID:    t.SenderID,
		RecipientID: t.RecipientID,
		Amount:      t.Amount,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}

	return result
}

// TransferCreatedResponse is the envelope for a completed transfer:
// the immutable transfer record plus the sender's balance after it.
type TransferCreatedResponse struct {
	Transfer   *TransferResponse `json:"transfer"`
	NewBalance decimal.Decimal   `json:"new_balance"`
}

// BalanceResponse represents a balance lookup.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// StatsResponse aggregates an account's transfer activity.
type StatsResponse struct {
	TotalTransfers int64           `json:"total_transfers"`
	TotalSent      decimal.Decimal `json:"total_sent"`
	TotalReceived  decimal.Decimal `json:"total_received"`
	NetFlow        decimal.Decimal `json:"net_flow"`
}

// StatsFromDomain converts domain stats to a response.
func StatsFromDomain(s *domain.TransferStats) *StatsResponse {
	return &StatsResponse{
		TotalTransfers: s.TotalTransfers,
		TotalSent:      s.TotalSent,
		TotalReceived:  s.TotalReceived,
		NetFlow:        s.NetFlow(),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
