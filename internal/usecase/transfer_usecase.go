package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okanin/payflow/internal/domain"
)

// TransferUseCase executes transfers as single atomic units of work.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	idGen        IDGenerator
	retrier      Retrier
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	idGen IDGenerator,
	retrier Retrier,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		idGen:        idGen,
		retrier:      retrier,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	SenderID       string
	RecipientID    string
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey *string
}

// CreateTransferOutput is the committed transfer plus the sender's
// balance after the debit.
type CreateTransferOutput struct {
	Transfer      *domain.Transfer
	SenderBalance decimal.Decimal
}

// CreateTransfer moves amount from sender to recipient. The balance
// check, the transfer row, and both balance writes commit together;
// on any failure nothing is visible. Both account rows are locked in
// ascending ID order so that opposing transfers between the same pair
// cannot deadlock.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*CreateTransferOutput, error) {
	if input.SenderID == input.RecipientID {
		return nil, domain.ErrSelfTransfer
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var out *CreateTransferOutput

	err := uc.retrier.Retry(ctx, func() error {
		result, err := uc.executeTransfer(ctx, input)
		if err != nil {
			return err
		}

		out = result

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (uc *TransferUseCase) executeTransfer(ctx context.Context, input CreateTransferInput) (*CreateTransferOutput, error) {
	ids := []string{input.SenderID, input.RecipientID}
	sort.Strings(ids)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	var sender, recipient *domain.Account

	for _, a := range accounts {
		switch a.ID {
		case input.SenderID:
			sender = a
		case input.RecipientID:
			recipient = a
		}
	}

	if sender == nil {
		return nil, domain.ErrSenderNotFound
	}

	if !sender.CanDebit(input.Amount) {
		return nil, domain.ErrInsufficientFunds
	}

	if recipient == nil {
		return nil, domain.ErrRecipientNotFound
	}

	now := time.Now().UTC()

	transfer := &domain.Transfer{
		ID:             uc.idGen.Generate(),
		SenderID:       input.SenderID,
		RecipientID:    input.RecipientID,
		Amount:         input.Amount,
		Description:    input.Description,
		Status:         domain.TransferStatusCompleted,
		IdempotencyKey: input.IdempotencyKey,
		CreatedAt:      now,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
		return nil, err
	}

	senderBalance := sender.ApplyDebit(input.Amount)
	if err := uc.accountRepo.UpdateBalance(ctx, tx, sender.ID, senderBalance, now); err != nil {
		return nil, err
	}

	recipientBalance := recipient.ApplyCredit(input.Amount)
	if err := uc.accountRepo.UpdateBalance(ctx, tx, recipient.ID, recipientBalance, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &CreateTransferOutput{
		Transfer:      transfer,
		SenderBalance: senderBalance,
	}, nil
}

// GetTransferForAccount retrieves a transfer, restricted to its
// participants.
func (uc *TransferUseCase) GetTransferForAccount(ctx context.Context, id, accountID string) (*domain.Transfer, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transfer.Involves(accountID) {
		return nil, domain.ErrNotParticipant
	}

	return transfer, nil
}

// ListHistoryInput represents input for listing an account's transfers.
type ListHistoryInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListHistory lists transfers where the account is sender or recipient,
// newest first.
func (uc *TransferUseCase) ListHistory(ctx context.Context, input ListHistoryInput) ([]*domain.Transfer, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	if input.Offset < 0 {
		input.Offset = 0
	}

	return uc.transferRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// GetBalance returns the account's current balance.
func (uc *TransferUseCase) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// GetStats returns aggregate transfer activity for an account.
func (uc *TransferUseCase) GetStats(ctx context.Context, accountID string) (*domain.TransferStats, error) {
	return uc.transferRepo.StatsByAccount(ctx, accountID)
}
