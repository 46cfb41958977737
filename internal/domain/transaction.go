package domain

import "time"

// TransactionType determines how a transaction's delta lands on balances.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// SourceType records how a transaction entered the ledger.
type SourceType string

const (
	SourceManual    SourceType = "manual"
	SourceReceipt   SourceType = "receipt"
	SourceRecurring SourceType = "recurring"
	SourceTransfer  SourceType = "transfer"
)

// Transaction is the atomic ledger entry. IsBalanceApplied is the linchpin
// invariant: true if and only if this row's delta is currently reflected in
// its account balances.
type Transaction struct {
	ID                  string
	UserID              string
	AccountID           string
	TransferAccountID   *string
	SourceType          SourceType
	Type                TransactionType
	IsFixed             bool
	IsBalanceApplied    bool
	MerchantName        string
	Category            string
	TransactionDate     *time.Time
	TotalBGNCents       int64
	TotalEURCents       int64
	TotalOriginalCents  *int64
	CurrencyOriginal    Currency
	Notes               *string
	IsEdited            bool
	OriginalImageURL    *string
	AIExtractedJSON     []byte
	RecurringTemplateID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate checks the structural invariants a row must satisfy before it
// may touch balances.
func (t *Transaction) Validate() error {
	if t.AccountID == "" {
		return ErrAccountRequired
	}
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if t.TotalBGNCents < 0 || t.TotalEURCents < 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TransactionTypeTransfer:
		if t.TransferAccountID == nil || *t.TransferAccountID == "" {
			return ErrTransferAccountRequired
		}
		if *t.TransferAccountID == t.AccountID {
			return ErrSameAccount
		}
	default:
		if t.TransferAccountID != nil {
			return ErrTransferAccountForbidden
		}
	}
	return nil
}

// IsBalanceEffective decides whether a transaction's economic event counts
// as having occurred by now, i.e. whether a row written at this moment
// should post its delta immediately. Variable transactions always post;
// fixed ones are gated on their date.
func IsBalanceEffective(isFixed bool, date *time.Time, now time.Time) bool {
	if !isFixed {
		return true
	}
	if date == nil {
		return true
	}
	return !date.After(now)
}

// IsBalanceCurrentlyApplied answers whether a persisted row's delta is live
// in the balances right now. Variable rows always are. A fixed row dated in
// the future never is, regardless of the stored flag; that protects the
// balances when an applied row's date is edited into the future. Otherwise
// the stored flag is the truth.
func IsBalanceCurrentlyApplied(isFixed bool, date *time.Time, applied bool, now time.Time) bool {
	if !isFixed {
		return true
	}
	if date != nil && date.After(now) {
		return false
	}
	return applied
}

// BalanceEffect returns the per-account deltas this row contributes while
// its delta is live. A transfer always carries both legs.
func (t *Transaction) BalanceEffect() map[string]Delta {
	effect := make(map[string]Delta, 2)
	switch t.Type {
	case TransactionTypeIncome:
		effect[t.AccountID] = IncomeDelta(t.TotalBGNCents, t.TotalEURCents)
	case TransactionTypeExpense:
		effect[t.AccountID] = ExpenseDelta(t.TotalBGNCents, t.TotalEURCents)
	case TransactionTypeTransfer:
		effect[t.AccountID] = ExpenseDelta(t.TotalBGNCents, t.TotalEURCents)
		if t.TransferAccountID != nil {
			credit := IncomeDelta(t.TotalBGNCents, t.TotalEURCents)
			effect[*t.TransferAccountID] = effect[*t.TransferAccountID].Add(credit)
		}
	}
	return effect
}

// CurrentEffect returns the row's live per-account deltas as of now, or an
// empty map when the row is not currently applied.
func (t *Transaction) CurrentEffect(now time.Time) map[string]Delta {
	if !IsBalanceCurrentlyApplied(t.IsFixed, t.TransactionDate, t.IsBalanceApplied, now) {
		return map[string]Delta{}
	}
	return t.BalanceEffect()
}

// DiffEffects computes after minus before per account, over the union of
// touched accounts. Accounts whose involvement did not change net to zero
// and are omitted; that is what lets arbitrary edits, including account
// reassignment and type changes, reconcile without transition-specific
// cases.
func DiffEffects(before, after map[string]Delta) map[string]Delta {
	diff := make(map[string]Delta, len(before)+len(after))
	for id, d := range after {
		diff[id] = d
	}
	for id, d := range before {
		diff[id] = diff[id].Add(d.Neg())
	}
	for id, d := range diff {
		if d.IsZero() {
			delete(diff, id)
		}
	}
	return diff
}
