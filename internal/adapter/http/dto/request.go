package dto

import (
	"github.com/shopspring/decimal"

	"github.com/okanin/payflow/internal/domain"
)

// RegisterRequest represents a request to create an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents a login attempt.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTransferRequest represents a request to transfer money to
// another account, addressed by email.
type CreateTransferRequest struct {
	RecipientEmail string          `json:"recipient_email"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
}

// Validate checks the request fields that need no store access.
func (r *CreateTransferRequest) Validate() error {
	if err := domain.ValidateEmail(r.RecipientEmail); err != nil {
		return err
	}

	if err := domain.ValidateAmount(r.Amount); err != nil {
		return err
	}

	return domain.ValidateDescription(r.Description)
}
