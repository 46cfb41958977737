package usecase

import (
	"context"
	"time"

	"github.com/velinov/fintrack/internal/domain"
)

// AccountUseCase handles account provisioning and listing.
type AccountUseCase struct {
	accountRepo  AccountRepository
	materializer *MaterializerUseCase
	idGen        IDGenerator
	now          func() time.Time
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, materializer *MaterializerUseCase, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo:  accountRepo,
		materializer: materializer,
		idGen:        idGen,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// EnsureDefaults provisions the cash/bank/savings trio the first time a
// user shows up. Balances start at zero and only ever move by deltas.
func (uc *AccountUseCase) EnsureDefaults(ctx context.Context, userID string) error {
	existing, err := uc.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := uc.now()
	for _, kind := range domain.DefaultAccountKinds {
		account := &domain.Account{
			ID:        uc.idGen.Generate(),
			UserID:    userID,
			Name:      string(kind),
			Kind:      kind,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.accountRepo.Create(ctx, account); err != nil {
			return err
		}
	}

	return nil
}

// Create adds one explicit account.
func (uc *AccountUseCase) Create(ctx context.Context, userID, name string, kind domain.AccountKind) (*domain.Account, error) {
	if !kind.Valid() {
		kind = domain.AccountKindCash
	}

	now := uc.now()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		UserID:    userID,
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Get loads one owned account.
func (uc *AccountUseCase) Get(ctx context.Context, userID, id string) (*domain.Account, error) {
	return uc.accountRepo.GetOwned(ctx, userID, id)
}

// List provisions defaults for first-time users, runs the due-date sweep,
// then returns the user's accounts, so the balances a caller sees already
// reflect every due fixed expense.
func (uc *AccountUseCase) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	if err := uc.EnsureDefaults(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := uc.materializer.ApplyDueFixedExpenses(ctx, userID); err != nil {
		return nil, err
	}

	return uc.accountRepo.ListByUser(ctx, userID)
}
