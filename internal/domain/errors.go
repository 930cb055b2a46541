package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrSenderNotFound    = errors.New("sender account not found")
	ErrRecipientNotFound = errors.New("recipient account not found")
	ErrEmailTaken        = errors.New("email is already registered")

	// Transfer errors
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrTransferNotFound  = errors.New("transfer not found")
	ErrNotParticipant    = errors.New("account is not a participant of this transfer")

	// Idempotency errors
	ErrIdempotencyKeyInvalid = errors.New("invalid idempotency key format")
	ErrIdempotencyInProgress = errors.New("request with this idempotency key is already being processed")
	ErrIdempotencyMismatch   = errors.New("idempotency key reused with different request parameters")

	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
