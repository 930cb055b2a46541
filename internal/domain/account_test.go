package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_CanDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance decimal.Decimal
		amount  decimal.Decimal
		want    bool
	}{
		{
			name:    "amount below balance",
			balance: decimal.NewFromInt(100),
			amount:  decimal.NewFromInt(50),
			want:    true,
		},
		{
			name:    "amount equals balance",
			balance: decimal.NewFromInt(100),
			amount:  decimal.NewFromInt(100),
			want:    true,
		},
		{
			name:    "amount above balance",
			balance: decimal.NewFromInt(100),
			amount:  decimal.NewFromInt(150),
			want:    false,
		},
		{
			name:    "fractional amount just above balance",
			balance: decimal.RequireFromString("100.00"),
			amount:  decimal.RequireFromString("100.01"),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			if got := acc.CanDebit(tt.amount); got != tt.want {
				t.Errorf("CanDebit(%s) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestAccount_ApplyDebit(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}
	newBalance := acc.ApplyDebit(decimal.NewFromInt(30))

	if !newBalance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected balance 70, got %s", newBalance)
	}
}

func TestAccount_ApplyCredit(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}
	newBalance := acc.ApplyCredit(decimal.RequireFromString("0.01"))

	if !newBalance.Equal(decimal.RequireFromString("100.01")) {
		t.Errorf("expected balance 100.01, got %s", newBalance)
	}
}
