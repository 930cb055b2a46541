package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/okanin/payflow/internal/domain"
)

// AccountUseCase handles account provisioning and authentication.
type AccountUseCase struct {
	accountRepo    AccountRepository
	idGen          IDGenerator
	initialBalance decimal.Decimal
}

// NewAccountUseCase creates a new AccountUseCase. New accounts start
// with initialBalance as a demo credit.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, initialBalance decimal.Decimal) *AccountUseCase {
	return &AccountUseCase{
		accountRepo:    accountRepo,
		idGen:          idGen,
		initialBalance: initialBalance,
	}
}

// RegisterInput represents input for creating an account.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register provisions a new account with a hashed password.
func (uc *AccountUseCase) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := uc.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Email:          email,
		Name:           input.Name,
		HashedPassword: string(hashed),
		Balance:        uc.initialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	account.HashedPassword = ""

	return account, nil
}

// AuthenticateInput represents login credentials.
type AuthenticateInput struct {
	Email    string
	Password string
}

// Authenticate verifies credentials and returns the account.
func (uc *AccountUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.Account, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	account, err := uc.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if account == nil {
		return nil, domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	account.HashedPassword = ""

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account.HashedPassword = ""

	return account, nil
}

// ResolveEmail implements AccountDirectory over the account repository.
func (uc *AccountUseCase) ResolveEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}

	if account == nil {
		return nil, domain.ErrRecipientNotFound
	}

	return account, nil
}
