package usecase

import (
	"context"
	"time"

	"github.com/velinov/fintrack/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetOwned(ctx context.Context, userID, id string) (*domain.Account, error)
	// ApplyDelta atomically increments both balance fields by the signed
	// delta, inside the caller's transaction. It is the only way balances
	// move.
	ApplyDelta(ctx context.Context, tx Transaction, id string, delta domain.Delta) error
	SetBalances(ctx context.Context, tx Transaction, id string, bgnCents, eurCents int64) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Account, error)
}

// TransactionRepository defines data access for ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetOwned(ctx context.Context, userID, id string) (*domain.Transaction, error)
	// GetOwnedForUpdate loads the row with a FOR UPDATE lock.
	GetOwnedForUpdate(ctx context.Context, tx Transaction, userID, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, t *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]*domain.Transaction, error)

	// Materializer queries.
	UnapplyFutureDated(ctx context.Context, tx Transaction, userID string, now time.Time) (int64, error)
	UnapplyLegacyInverted(ctx context.Context, tx Transaction, userID string) (int64, error)
	ListDueUnapplied(ctx context.Context, tx Transaction, userID string, now time.Time) ([]*domain.Transaction, error)
	// MarkApplied flips is_balance_applied under a WHERE guard; false means
	// another invocation won the race and the caller must not post deltas.
	MarkApplied(ctx context.Context, tx Transaction, id string, now time.Time) (bool, error)
}

// HistoryRepository defines data access for pre-edit snapshots.
type HistoryRepository interface {
	Create(ctx context.Context, tx Transaction, h *domain.TransactionHistory) error
	DeleteByTransaction(ctx context.Context, tx Transaction, transactionID string) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionHistory, error)
}

// RecurringRepository defines data access for recurring templates.
type RecurringRepository interface {
	Create(ctx context.Context, template *domain.RecurringTemplate) error
	GetOwned(ctx context.Context, userID, id string) (*domain.RecurringTemplate, error)
	Update(ctx context.Context, template *domain.RecurringTemplate) error
	Delete(ctx context.Context, userID, id string) error
	ListActive(ctx context.Context, userID string) ([]*domain.RecurringTemplate, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.RecurringTemplate, error)
}

// LedgerRepository defines ledger-wide aggregation queries.
type LedgerRepository interface {
	// AppliedSums recomputes, per account, the signed sum of all
	// currently-applied transaction deltas as of now.
	AppliedSums(ctx context.Context, userID string, now time.Time) (map[string]domain.Delta, error)
	CategoryTotals(ctx context.Context, userID string, from, to time.Time) (map[string]domain.Delta, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation after transient datastore failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RateLimitStore counts hits per client identity in a fixed window.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ReceiptExtractor turns a receipt image into a structured result.
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*domain.ExtractionResult, error)
}

// ReceiptStore persists uploaded receipt images and returns their URI.
type ReceiptStore interface {
	Save(ctx context.Context, objectName string, data []byte) (string, error)
}
