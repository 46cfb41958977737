package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velinov/fintrack/internal/domain"
)

// TransferUseCase creates money movements between two of a user's accounts.
// A transfer is a single ledger entry carrying both legs; the ledger create
// path applies debit and credit atomically.
type TransferUseCase struct {
	accountRepo AccountRepository
	ledger      *LedgerUseCase
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(accountRepo AccountRepository, ledger *LedgerUseCase) *TransferUseCase {
	return &TransferUseCase{accountRepo: accountRepo, ledger: ledger}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	UserID        string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Currency      domain.Currency
	Date          *time.Time
	Note          *string
}

// CreateTransfer validates ownership of both accounts and routes the
// movement through the ledger create path.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transaction, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Currency.Valid() {
		return nil, domain.ErrInvalidCurrency
	}

	// Both accounts must belong to the caller.
	from, err := uc.accountRepo.GetOwned(ctx, input.UserID, input.FromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := uc.accountRepo.GetOwned(ctx, input.UserID, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	toID := to.ID
	amount := input.Amount

	return uc.ledger.Create(ctx, CreateTransactionInput{
		UserID:            input.UserID,
		AccountID:         from.ID,
		TransferAccountID: &toID,
		Type:              domain.TransactionTypeTransfer,
		SourceType:        domain.SourceTransfer,
		MerchantName:      from.Name + " -> " + to.Name,
		Category:          "transfer",
		TransactionDate:   input.Date,
		Amount: domain.AmountInput{
			OriginalAmount:   &amount,
			OriginalCurrency: input.Currency,
		},
		Notes: input.Note,
	})
}
