// Package mocks provides hand-written in-memory fakes for the usecase
// repository interfaces. The fake store applies mutations immediately and
// records an undo log per transaction, so commit/rollback semantics behave
// like the real thing in tests.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
)

// Store is an in-memory backing for all fake repositories.
type Store struct {
	mu            sync.Mutex
	Accounts      map[string]*domain.Account
	Transactions  map[string]*domain.Transaction
	Histories     map[string][]*domain.TransactionHistory
	Templates     map[string]*domain.RecurringTemplate

	// ApplyDeltaErr, when set, fails ApplyDelta for the given account id.
	// Used to simulate a mid-flight datastore failure.
	ApplyDeltaErr map[string]error
}

// NewStore creates an empty fake store.
func NewStore() *Store {
	return &Store{
		Accounts:      make(map[string]*domain.Account),
		Transactions:  make(map[string]*domain.Transaction),
		Histories:     make(map[string][]*domain.TransactionHistory),
		Templates:     make(map[string]*domain.RecurringTemplate),
		ApplyDeltaErr: make(map[string]error),
	}
}

// AddAccount seeds an account.
func (s *Store) AddAccount(a *domain.Account) {
	copied := *a
	s.Accounts[a.ID] = &copied
}

// AddTransaction seeds a transaction.
func (s *Store) AddTransaction(t *domain.Transaction) {
	copied := *t
	s.Transactions[t.ID] = &copied
}

// AddTemplate seeds a recurring template.
func (s *Store) AddTemplate(tpl *domain.RecurringTemplate) {
	copied := *tpl
	s.Templates[tpl.ID] = &copied
}

// Tx is a fake transaction holding an undo log.
type Tx struct {
	store      *Store
	undo       []func()
	committed  bool
	rolledBack bool
}

// Commit discards the undo log.
func (t *Tx) Commit(ctx context.Context) error {
	t.committed = true
	t.undo = nil
	return nil
}

// Rollback replays the undo log in reverse. A rollback after commit is a
// no-op, matching the deferred-rollback idiom.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return nil
	}
	t.rolledBack = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

// TxManager is a fake usecase.TransactionManager.
type TxManager struct {
	store *Store
	// BeginErr, when set, fails Begin.
	BeginErr error
	// Begun collects every transaction handed out, for assertions.
	Begun []*Tx
}

// NewTxManager creates a fake transaction manager over the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a fake transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	tx := &Tx{store: m.store}
	m.Begun = append(m.Begun, tx)
	return tx, nil
}

func asTx(tx usecase.Transaction) *Tx {
	return tx.(*Tx)
}

// AccountRepository is a fake over the store.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a fake account repository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *account
	r.store.Accounts[account.ID] = &copied
	return nil
}

func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *account
	r.store.Accounts[account.ID] = &copied
	id := account.ID
	ftx.undo = append(ftx.undo, func() { delete(r.store.Accounts, id) })
	return nil
}

func (r *AccountRepository) GetOwned(ctx context.Context, userID, id string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acc, ok := r.store.Accounts[id]
	if !ok || acc.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	copied := *acc
	return &copied, nil
}

func (r *AccountRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, id string, delta domain.Delta) error {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.ApplyDeltaErr[id]; err != nil {
		return err
	}

	acc, ok := r.store.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	acc.BalanceBGNCents += delta.BGNCents
	acc.BalanceEURCents += delta.EURCents
	ftx.undo = append(ftx.undo, func() {
		acc.BalanceBGNCents -= delta.BGNCents
		acc.BalanceEURCents -= delta.EURCents
	})
	return nil
}

func (r *AccountRepository) SetBalances(ctx context.Context, tx usecase.Transaction, id string, bgnCents, eurCents int64) error {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	acc, ok := r.store.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	prevBGN, prevEUR := acc.BalanceBGNCents, acc.BalanceEURCents
	acc.BalanceBGNCents = bgnCents
	acc.BalanceEURCents = eurCents
	ftx.undo = append(ftx.undo, func() {
		acc.BalanceBGNCents = prevBGN
		acc.BalanceEURCents = prevEUR
	})
	return nil
}

func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var accounts []*domain.Account
	for _, acc := range r.store.Accounts {
		if acc.UserID == userID {
			copied := *acc
			accounts = append(accounts, &copied)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// TransactionRepository is a fake over the store.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a fake transaction repository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.Accounts[t.AccountID]; !ok {
		return domain.ErrAccountNotFound
	}
	if t.TransferAccountID != nil {
		if _, ok := r.store.Accounts[*t.TransferAccountID]; !ok {
			return domain.ErrAccountNotFound
		}
	}

	copied := *t
	r.store.Transactions[t.ID] = &copied
	id := t.ID
	ftx.undo = append(ftx.undo, func() { delete(r.store.Transactions, id) })
	return nil
}

func (r *TransactionRepository) GetOwned(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getOwnedLocked(userID, id)
}

func (r *TransactionRepository) GetOwnedForUpdate(ctx context.Context, tx usecase.Transaction, userID, id string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getOwnedLocked(userID, id)
}

func (r *TransactionRepository) getOwnedLocked(userID, id string) (*domain.Transaction, error) {
	t, ok := r.store.Transactions[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prev, ok := r.store.Transactions[t.ID]
	if !ok {
		return domain.ErrTransactionNotFound
	}

	copied := *t
	r.store.Transactions[t.ID] = &copied
	ftx.undo = append(ftx.undo, func() { r.store.Transactions[t.ID] = prev })
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prev, ok := r.store.Transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}

	delete(r.store.Transactions, id)
	ftx.undo = append(ftx.undo, func() { r.store.Transactions[id] = prev })
	return nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	all := r.listLocked(userID)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *TransactionRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range r.listLocked(userID) {
		if t.TransactionDate == nil {
			continue
		}
		if t.TransactionDate.Before(from) || t.TransactionDate.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *TransactionRepository) listLocked(userID string) []*domain.Transaction {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*domain.Transaction
	for _, t := range r.store.Transactions {
		if t.UserID == userID {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *TransactionRepository) UnapplyFutureDated(ctx context.Context, tx usecase.Transaction, userID string, now time.Time) (int64, error) {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for _, t := range r.store.Transactions {
		if t.UserID != userID || !t.IsFixed || !t.IsBalanceApplied {
			continue
		}
		if t.TransactionDate == nil || !t.TransactionDate.After(now) {
			continue
		}
		row := t
		row.IsBalanceApplied = false
		ftx.undo = append(ftx.undo, func() { row.IsBalanceApplied = true })
		n++
	}
	return n, nil
}

func (r *TransactionRepository) UnapplyLegacyInverted(ctx context.Context, tx usecase.Transaction, userID string) (int64, error) {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for _, t := range r.store.Transactions {
		if t.UserID != userID || !t.IsFixed || !t.IsBalanceApplied {
			continue
		}
		if t.TransactionDate == nil || !t.CreatedAt.Before(*t.TransactionDate) {
			continue
		}
		// Sweep-applied rows carry a later updated_at and are not legacy.
		if t.UpdatedAt.After(t.CreatedAt) {
			continue
		}
		row := t
		row.IsBalanceApplied = false
		ftx.undo = append(ftx.undo, func() { row.IsBalanceApplied = true })
		n++
	}
	return n, nil
}

func (r *TransactionRepository) ListDueUnapplied(ctx context.Context, tx usecase.Transaction, userID string, now time.Time) ([]*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*domain.Transaction
	for _, t := range r.store.Transactions {
		if t.UserID != userID || !t.IsFixed || t.IsBalanceApplied {
			continue
		}
		if t.TransactionDate == nil || t.TransactionDate.After(now) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TransactionRepository) MarkApplied(ctx context.Context, tx usecase.Transaction, id string, now time.Time) (bool, error) {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.Transactions[id]
	if !ok || t.IsBalanceApplied {
		return false, nil
	}
	prevUpdatedAt := t.UpdatedAt
	t.IsBalanceApplied = true
	t.UpdatedAt = now
	ftx.undo = append(ftx.undo, func() {
		t.IsBalanceApplied = false
		t.UpdatedAt = prevUpdatedAt
	})
	return true, nil
}

// HistoryRepository is a fake over the store.
type HistoryRepository struct {
	store *Store
}

// NewHistoryRepository creates a fake history repository.
func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

func (r *HistoryRepository) Create(ctx context.Context, tx usecase.Transaction, h *domain.TransactionHistory) error {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *h
	r.store.Histories[h.TransactionID] = append(r.store.Histories[h.TransactionID], &copied)
	txID := h.TransactionID
	ftx.undo = append(ftx.undo, func() {
		rows := r.store.Histories[txID]
		r.store.Histories[txID] = rows[:len(rows)-1]
	})
	return nil
}

func (r *HistoryRepository) DeleteByTransaction(ctx context.Context, tx usecase.Transaction, transactionID string) error {
	ftx := asTx(tx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prev := r.store.Histories[transactionID]
	delete(r.store.Histories, transactionID)
	ftx.undo = append(ftx.undo, func() { r.store.Histories[transactionID] = prev })
	return nil
}

func (r *HistoryRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionHistory, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows := r.store.Histories[transactionID]
	out := make([]*domain.TransactionHistory, len(rows))
	copy(out, rows)
	return out, nil
}

// RecurringRepository is a fake over the store.
type RecurringRepository struct {
	store *Store
}

// NewRecurringRepository creates a fake recurring template repository.
func NewRecurringRepository(store *Store) *RecurringRepository {
	return &RecurringRepository{store: store}
}

func (r *RecurringRepository) Create(ctx context.Context, template *domain.RecurringTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *template
	r.store.Templates[template.ID] = &copied
	return nil
}

func (r *RecurringRepository) GetOwned(ctx context.Context, userID, id string) (*domain.RecurringTemplate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tpl, ok := r.store.Templates[id]
	if !ok || tpl.UserID != userID {
		return nil, domain.ErrTemplateNotFound
	}
	copied := *tpl
	return &copied, nil
}

func (r *RecurringRepository) Update(ctx context.Context, template *domain.RecurringTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.Templates[template.ID]; !ok {
		return domain.ErrTemplateNotFound
	}
	copied := *template
	r.store.Templates[template.ID] = &copied
	return nil
}

func (r *RecurringRepository) Delete(ctx context.Context, userID, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tpl, ok := r.store.Templates[id]
	if !ok || tpl.UserID != userID {
		return domain.ErrTemplateNotFound
	}
	delete(r.store.Templates, id)
	return nil
}

func (r *RecurringRepository) ListActive(ctx context.Context, userID string) ([]*domain.RecurringTemplate, error) {
	return r.list(userID, true)
}

func (r *RecurringRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RecurringTemplate, error) {
	return r.list(userID, false)
}

func (r *RecurringRepository) list(userID string, activeOnly bool) ([]*domain.RecurringTemplate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*domain.RecurringTemplate
	for _, tpl := range r.store.Templates {
		if tpl.UserID != userID {
			continue
		}
		if activeOnly && !tpl.IsActive {
			continue
		}
		copied := *tpl
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// IDGenerator hands out sequential ids for deterministic tests.
type IDGenerator struct {
	mu   sync.Mutex
	next int
}

// NewIDGenerator creates a sequential id generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Generate returns "id-1", "id-2", ...
func (g *IDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}

// LedgerRepository recomputes aggregates over the store's transactions the
// way the SQL implementation does.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a fake ledger repository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// liveAsOf reports whether a row's delta counts toward balances as of now.
func liveAsOf(t *domain.Transaction, now time.Time) bool {
	if !t.IsFixed {
		return true
	}
	if !t.IsBalanceApplied {
		return false
	}
	return t.TransactionDate == nil || !t.TransactionDate.After(now)
}

func signedDelta(t *domain.Transaction) domain.Delta {
	if t.Type == domain.TransactionTypeIncome {
		return domain.IncomeDelta(t.TotalBGNCents, t.TotalEURCents)
	}
	return domain.ExpenseDelta(t.TotalBGNCents, t.TotalEURCents)
}

func (r *LedgerRepository) AppliedSums(ctx context.Context, userID string, now time.Time) (map[string]domain.Delta, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sums := make(map[string]domain.Delta)
	for _, t := range r.store.Transactions {
		if t.UserID != userID || !liveAsOf(t, now) {
			continue
		}
		sums[t.AccountID] = sums[t.AccountID].Add(signedDelta(t))
		if t.Type == domain.TransactionTypeTransfer && t.TransferAccountID != nil {
			credit := domain.IncomeDelta(t.TotalBGNCents, t.TotalEURCents)
			sums[*t.TransferAccountID] = sums[*t.TransferAccountID].Add(credit)
		}
	}
	return sums, nil
}

func (r *LedgerRepository) CategoryTotals(ctx context.Context, userID string, from, to time.Time) (map[string]domain.Delta, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	totals := make(map[string]domain.Delta)
	for _, t := range r.store.Transactions {
		if t.UserID != userID || !liveAsOf(t, now) {
			continue
		}
		at := t.CreatedAt
		if t.TransactionDate != nil {
			at = *t.TransactionDate
		}
		if at.Before(from) || !at.Before(to) {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(signedDelta(t))
	}
	return totals, nil
}
