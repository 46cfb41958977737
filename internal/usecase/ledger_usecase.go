package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velinov/fintrack/internal/domain"
)

// LedgerUseCase owns the three balance-touching mutations: create, edit and
// delete. Every operation runs inside one database transaction spanning the
// row write, the history write and every balance delta; partial application
// is the failure mode this type exists to prevent.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	historyRepo HistoryRepository
	idGen       IDGenerator
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	historyRepo HistoryRepository,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		historyRepo: historyRepo,
		idGen:       idGen,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransactionInput represents input for creating a ledger entry.
type CreateTransactionInput struct {
	UserID              string
	AccountID           string
	TransferAccountID   *string
	Type                domain.TransactionType
	SourceType          domain.SourceType
	IsFixed             bool
	MerchantName        string
	Category            string
	TransactionDate     *time.Time
	Amount              domain.AmountInput
	Notes               *string
	OriginalImageURL    *string
	AIExtractedJSON     []byte
	RecurringTemplateID *string
}

// Create inserts a new ledger entry and, when its economic event has
// already occurred, posts its delta to the affected account(s) in the same
// transaction.
func (uc *LedgerUseCase) Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	totals := domain.ResolveTotals(input.Amount)
	if totals.BGNCents == nil || totals.EURCents == nil {
		return nil, domain.ErrInvalidAmount
	}

	now := uc.now()
	shouldApply := domain.IsBalanceEffective(input.IsFixed, input.TransactionDate, now)

	t := &domain.Transaction{
		ID:                  uc.idGen.Generate(),
		UserID:              input.UserID,
		AccountID:           input.AccountID,
		TransferAccountID:   input.TransferAccountID,
		SourceType:          input.SourceType,
		Type:                input.Type,
		IsFixed:             input.IsFixed,
		IsBalanceApplied:    shouldApply,
		MerchantName:        input.MerchantName,
		Category:            input.Category,
		TransactionDate:     input.TransactionDate,
		TotalBGNCents:       *totals.BGNCents,
		TotalEURCents:       *totals.EURCents,
		Notes:               input.Notes,
		OriginalImageURL:    input.OriginalImageURL,
		AIExtractedJSON:     input.AIExtractedJSON,
		RecurringTemplateID: input.RecurringTemplateID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if input.Amount.OriginalAmount != nil && input.Amount.OriginalCurrency.Valid() {
		original := originalCents(*input.Amount.OriginalAmount)
		t.TotalOriginalCents = &original
		t.CurrencyOriginal = input.Amount.OriginalCurrency
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.txRepo.Create(ctx, tx, t); err != nil {
		return nil, err
	}

	if shouldApply {
		if err := uc.applyEffects(ctx, tx, t.BalanceEffect()); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

// UpdateTransactionInput is a partial set of editable fields; nil means
// "leave as is".
type UpdateTransactionInput struct {
	AccountID         *string
	TransferAccountID *string
	Type              *domain.TransactionType
	MerchantName      *string
	Category          *string
	IsFixed           *bool
	TransactionDate   *time.Time
	Amount            *decimal.Decimal
	Currency          *domain.Currency
	Notes             *string
}

// Update edits a ledger entry, appends a pre-edit history snapshot, and
// reconciles balances by applying the per-account difference between the
// row's old and new effects. Accounts whose involvement is unchanged
// receive no delta at all.
func (uc *LedgerUseCase) Update(ctx context.Context, userID, id string, input UpdateTransactionInput) (*domain.Transaction, error) {
	now := uc.now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := uc.txRepo.GetOwnedForUpdate(ctx, tx, userID, id)
	if err != nil {
		return nil, err
	}

	// The before map must be computed against the pre-edit state.
	before := t.CurrentEffect(now)

	snapshot, err := domain.NewHistorySnapshot(uc.idGen.Generate(), t, now)
	if err != nil {
		return nil, err
	}
	if err := uc.historyRepo.Create(ctx, tx, snapshot); err != nil {
		return nil, err
	}

	applyTransactionUpdate(t, input)
	t.IsBalanceApplied = domain.IsBalanceEffective(t.IsFixed, t.TransactionDate, now)
	t.IsEdited = true
	t.UpdatedAt = now

	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txRepo.Update(ctx, tx, t); err != nil {
		return nil, err
	}

	after := t.CurrentEffect(now)

	if err := uc.applyEffects(ctx, tx, domain.DiffEffects(before, after)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

// Delete reverses a ledger entry's live balance effect and removes the row
// together with its history, all in one transaction.
func (uc *LedgerUseCase) Delete(ctx context.Context, userID, id string) error {
	now := uc.now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	t, err := uc.txRepo.GetOwnedForUpdate(ctx, tx, userID, id)
	if err != nil {
		return err
	}

	effect := t.CurrentEffect(now)
	reversal := make(map[string]domain.Delta, len(effect))
	for accountID, d := range effect {
		reversal[accountID] = d.Neg()
	}

	if err := uc.applyEffects(ctx, tx, reversal); err != nil {
		return err
	}

	if err := uc.historyRepo.DeleteByTransaction(ctx, tx, t.ID); err != nil {
		return err
	}
	if err := uc.txRepo.Delete(ctx, tx, t.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Get loads a single owned entry.
func (uc *LedgerUseCase) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetOwned(ctx, userID, id)
}

// List lists a user's entries, newest first.
func (uc *LedgerUseCase) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	return uc.txRepo.ListByUser(ctx, userID, limit, offset)
}

// History lists the pre-edit snapshots of one owned entry.
func (uc *LedgerUseCase) History(ctx context.Context, userID, id string) ([]*domain.TransactionHistory, error) {
	if _, err := uc.txRepo.GetOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	return uc.historyRepo.ListByTransaction(ctx, id)
}

// applyEffects posts one delta per account, in sorted account order so
// concurrent multi-account operations lock rows in a stable order.
func (uc *LedgerUseCase) applyEffects(ctx context.Context, tx Transaction, effects map[string]domain.Delta) error {
	ids := make([]string, 0, len(effects))
	for id := range effects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if effects[id].IsZero() {
			continue
		}
		if err := uc.accountRepo.ApplyDelta(ctx, tx, id, effects[id]); err != nil {
			return err
		}
	}

	return nil
}

func applyTransactionUpdate(t *domain.Transaction, input UpdateTransactionInput) {
	if input.AccountID != nil {
		t.AccountID = *input.AccountID
	}
	if input.Type != nil {
		t.Type = *input.Type
	}
	if input.TransferAccountID != nil {
		t.TransferAccountID = input.TransferAccountID
	}
	if t.Type != domain.TransactionTypeTransfer {
		t.TransferAccountID = nil
	}
	if input.MerchantName != nil {
		t.MerchantName = *input.MerchantName
	}
	if input.Category != nil {
		t.Category = *input.Category
	}
	if input.IsFixed != nil {
		t.IsFixed = *input.IsFixed
	}
	if input.TransactionDate != nil {
		t.TransactionDate = input.TransactionDate
	}
	if input.Notes != nil {
		t.Notes = input.Notes
	}

	if input.Amount != nil {
		currency := t.CurrencyOriginal
		if input.Currency != nil {
			currency = *input.Currency
		}
		if !currency.Valid() {
			currency = domain.CurrencyBGN
		}
		totals := domain.ResolveTotals(domain.AmountInput{
			OriginalAmount:   input.Amount,
			OriginalCurrency: currency,
		})
		if totals.BGNCents != nil && totals.EURCents != nil {
			t.TotalBGNCents = *totals.BGNCents
			t.TotalEURCents = *totals.EURCents
			original := originalCents(*input.Amount)
			t.TotalOriginalCents = &original
			t.CurrencyOriginal = currency
		}
	}
}

func originalCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
