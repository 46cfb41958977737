package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, account_id, transfer_account_id, source_type, type,
	is_fixed, is_balance_applied, merchant_name, category, transaction_date,
	total_bgn_cents, total_eur_cents, total_original_cents, currency_original,
	notes, is_edited, original_image_url, ai_extracted_json, recurring_template_id,
	created_at, updated_at`

// Create inserts a new ledger entry inside the caller's transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, account_id, transfer_account_id, source_type, type,
			is_fixed, is_balance_applied, merchant_name, category, transaction_date,
			total_bgn_cents, total_eur_cents, total_original_cents, currency_original,
			notes, is_edited, original_image_url, ai_extracted_json, recurring_template_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		t.ID,
		t.UserID,
		t.AccountID,
		t.TransferAccountID,
		t.SourceType,
		t.Type,
		t.IsFixed,
		t.IsBalanceApplied,
		t.MerchantName,
		t.Category,
		t.TransactionDate,
		t.TotalBGNCents,
		t.TotalEURCents,
		t.TotalOriginalCents,
		nullableCurrency(t.CurrencyOriginal),
		t.Notes,
		t.IsEdited,
		t.OriginalImageURL,
		t.AIExtractedJSON,
		t.RecurringTemplateID,
		t.CreatedAt,
		t.UpdatedAt,
	)

	return err
}

// GetOwned retrieves a ledger entry scoped to its owner.
func (r *TransactionRepository) GetOwned(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`

	return r.getOwned(ctx, r.pool, query, userID, id)
}

// GetOwnedForUpdate retrieves a ledger entry with a FOR UPDATE lock, so
// concurrent edits of the same row serialize.
func (r *TransactionRepository) GetOwnedForUpdate(ctx context.Context, tx usecase.Transaction, userID, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`

	return r.getOwned(ctx, txQuerier(tx), query, userID, id)
}

func (r *TransactionRepository) getOwned(ctx context.Context, q querier, query, userID, id string) (*domain.Transaction, error) {
	t, err := scanTransaction(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return t, nil
}

// Update rewrites all mutable columns of a ledger entry.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $2,
		    transfer_account_id = $3,
		    type = $4,
		    is_fixed = $5,
		    is_balance_applied = $6,
		    merchant_name = $7,
		    category = $8,
		    transaction_date = $9,
		    total_bgn_cents = $10,
		    total_eur_cents = $11,
		    total_original_cents = $12,
		    currency_original = $13,
		    notes = $14,
		    is_edited = $15,
		    updated_at = $16
		WHERE id = $1
	`

	tag, err := txQuerier(tx).Exec(ctx, query,
		t.ID,
		t.AccountID,
		t.TransferAccountID,
		t.Type,
		t.IsFixed,
		t.IsBalanceApplied,
		t.MerchantName,
		t.Category,
		t.TransactionDate,
		t.TotalBGNCents,
		t.TotalEURCents,
		t.TotalOriginalCents,
		nullableCurrency(t.CurrencyOriginal),
		t.Notes,
		t.IsEdited,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a ledger entry inside the caller's transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByUser retrieves a user's entries, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY transaction_date DESC NULLS LAST, created_at DESC
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, userID, limit, offset)
}

// ListByUserBetween retrieves a user's entries with a transaction date in
// [from, to].
func (r *TransactionRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND transaction_date BETWEEN $2 AND $3
		ORDER BY transaction_date, created_at`

	return r.list(ctx, query, userID, from, to)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// UnapplyFutureDated clears the applied flag on fixed rows dated after now.
// No delta reversal happens here; by invariant such rows never posted one.
func (r *TransactionRepository) UnapplyFutureDated(ctx context.Context, tx usecase.Transaction, userID string, now time.Time) (int64, error) {
	query := `
		UPDATE transactions
		SET is_balance_applied = FALSE, updated_at = now()
		WHERE user_id = $1
		  AND is_fixed
		  AND is_balance_applied
		  AND transaction_date IS NOT NULL
		  AND transaction_date > $2
	`

	tag, err := txQuerier(tx).Exec(ctx, query, userID, now)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// UnapplyLegacyInverted clears the applied flag on fixed rows created
// before their nominal date, which predate due-date gating. The updated_at
// guard limits this to rows untouched since creation: a row the sweep
// applied carries a later updated_at and must keep its flag, or every
// subsequent sweep would re-post its delta.
func (r *TransactionRepository) UnapplyLegacyInverted(ctx context.Context, tx usecase.Transaction, userID string) (int64, error) {
	query := `
		UPDATE transactions
		SET is_balance_applied = FALSE, updated_at = now()
		WHERE user_id = $1
		  AND is_fixed
		  AND is_balance_applied
		  AND transaction_date IS NOT NULL
		  AND created_at < transaction_date
		  AND updated_at <= created_at
	`

	tag, err := txQuerier(tx).Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// ListDueUnapplied retrieves fixed rows whose date has arrived but whose
// delta has not been posted, locking them for the duration of the sweep.
func (r *TransactionRepository) ListDueUnapplied(ctx context.Context, tx usecase.Transaction, userID string, now time.Time) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		  AND is_fixed
		  AND NOT is_balance_applied
		  AND transaction_date IS NOT NULL
		  AND transaction_date <= $2
		ORDER BY id
		FOR UPDATE`

	rows, err := txQuerier(tx).Query(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// MarkApplied flips the applied flag under a WHERE guard. A false return
// means another invocation already applied this row and the caller must
// not post its delta.
func (r *TransactionRepository) MarkApplied(ctx context.Context, tx usecase.Transaction, id string, now time.Time) (bool, error) {
	query := `
		UPDATE transactions
		SET is_balance_applied = TRUE, updated_at = $2
		WHERE id = $1 AND is_balance_applied = FALSE
	`

	tag, err := txQuerier(tx).Exec(ctx, query, id, now)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var currency *string

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AccountID,
		&t.TransferAccountID,
		&t.SourceType,
		&t.Type,
		&t.IsFixed,
		&t.IsBalanceApplied,
		&t.MerchantName,
		&t.Category,
		&t.TransactionDate,
		&t.TotalBGNCents,
		&t.TotalEURCents,
		&t.TotalOriginalCents,
		&currency,
		&t.Notes,
		&t.IsEdited,
		&t.OriginalImageURL,
		&t.AIExtractedJSON,
		&t.RecurringTemplateID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if currency != nil {
		t.CurrencyOriginal = domain.Currency(*currency)
	}

	return &t, nil
}

// nullableCurrency maps the zero currency to NULL.
func nullableCurrency(c domain.Currency) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}
