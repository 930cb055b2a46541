package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateIdempotencyKey(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		expectError bool
	}{
		{
			name:        "minimum length",
			key:         strings.Repeat("a", MinIdempotencyKeyLength),
			expectError: false,
		},
		{
			name:        "maximum length",
			key:         strings.Repeat("a", MaxIdempotencyKeyLength),
			expectError: false,
		},
		{
			name:        "one below minimum",
			key:         strings.Repeat("a", MinIdempotencyKeyLength-1),
			expectError: true,
		},
		{
			name:        "one above maximum",
			key:         strings.Repeat("a", MaxIdempotencyKeyLength+1),
			expectError: true,
		},
		{
			name:        "empty",
			key:         "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdempotencyKey(tt.key)

			if tt.expectError {
				if !errors.Is(err, ErrIdempotencyKeyInvalid) {
					t.Errorf("expected ErrIdempotencyKeyInvalid, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"bob.smith+tag@sub.example.co.uk",
	}

	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("expected %q to be valid, got %v", email, err)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"missing@domain",
		"@example.com",
	}

	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}

	if err := ValidatePassword(strings.Repeat("x", MaxPasswordLength+1)); !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}

	if err := ValidatePassword("long enough password"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.Zero); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-1)); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	tooLarge := decimal.RequireFromString(MaxTransferAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(tooLarge); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("expected ErrAmountTooLarge, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.01")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateDescription(t *testing.T) {
	if err := ValidateDescription(strings.Repeat("x", MaxDescriptionLength)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := ValidateDescription(strings.Repeat("x", MaxDescriptionLength+1)); err != ErrDescriptionTooLong {
		t.Errorf("expected ErrDescriptionTooLong, got %v", err)
	}
}
