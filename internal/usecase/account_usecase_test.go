package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/okanin/payflow/internal/domain"
	"github.com/okanin/payflow/internal/usecase"
	"github.com/okanin/payflow/internal/usecase/mocks"
)

func newAccountUseCase(accRepo *mocks.MockAccountRepository) *usecase.AccountUseCase {
	return usecase.NewAccountUseCase(accRepo, mocks.NewMockIDGenerator(), decimal.NewFromInt(1000))
}

func TestAccountUseCase_Register(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	uc := newAccountUseCase(accRepo)

	account, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "  Alice@Example.COM ",
		Name:     "Alice",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", account.Email)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Empty(t, account.HashedPassword, "hash must not leave the use case")

	stored, err := accRepo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)

	err = bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("correct horse battery"))
	assert.NoError(t, err, "stored hash must verify against the original password")
}

func TestAccountUseCase_RegisterValidation(t *testing.T) {
	uc := newAccountUseCase(mocks.NewMockAccountRepository())

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "not-an-email",
		Name:     "Alice",
		Password: "long enough password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrPasswordTooWeak)
}

func TestAccountUseCase_RegisterDuplicateEmail(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	uc := newAccountUseCase(accRepo)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "long enough password",
	})
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "ALICE@example.com",
		Name:     "Alice Again",
		Password: "long enough password",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAccountUseCase_Authenticate(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	uc := newAccountUseCase(accRepo)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "long enough password",
	})
	require.NoError(t, err)

	account, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "long enough password",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Empty(t, account.HashedPassword)

	_, err = uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "wrong password!",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "nobody@example.com",
		Password: "long enough password",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAccountUseCase_ResolveEmail(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	uc := newAccountUseCase(accRepo)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "bob@example.com",
		Name:     "Bob",
		Password: "long enough password",
	})
	require.NoError(t, err)

	account, err := uc.ResolveEmail(context.Background(), " BOB@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", account.Email)

	_, err = uc.ResolveEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrRecipientNotFound)
}

func TestAccountUseCase_RepositoryErrorPropagates(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	repoErr := errors.New("connection refused")
	accRepo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
		return nil, repoErr
	}

	uc := newAccountUseCase(accRepo)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "long enough password",
	})
	assert.ErrorIs(t, err, repoErr)
}
