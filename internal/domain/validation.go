package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MinIdempotencyKeyLength = 10
	MaxIdempotencyKeyLength = 255
	MinPasswordLength       = 8
	MaxPasswordLength       = 128
	MaxDescriptionLength    = 500
	MaxTransferAmount       = "1000000000000"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	ErrInvalidEmail       = fmt.Errorf("invalid email format")
	ErrPasswordTooWeak    = fmt.Errorf("password does not meet requirements")
	ErrDescriptionTooLong = fmt.Errorf("description exceeds %d characters", MaxDescriptionLength)
	ErrAmountTooLarge     = fmt.Errorf("amount exceeds maximum allowed")
)

// ValidateIdempotencyKey checks the accepted key length range. Anything
// outside it is rejected before any store access happens.
func ValidateIdempotencyKey(key string) error {
	if len(key) < MinIdempotencyKeyLength || len(key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: must be between %d and %d characters",
			ErrIdempotencyKeyInvalid, MinIdempotencyKeyLength, MaxIdempotencyKeyLength)
	}

	return nil
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password strength.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	return nil
}

// ValidateAmount validates a transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxTransferAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransferAmount)
	}

	return nil
}

// ValidateDescription validates an optional transfer description.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	return nil
}
