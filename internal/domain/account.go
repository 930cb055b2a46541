package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user of the system together with the balance they hold.
type Account struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Balance        decimal.Decimal
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanDebit reports whether the account balance covers amount.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// ApplyDebit returns the balance after debiting amount.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after crediting amount.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
