package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velinov/fintrack/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository, the ledger-wide
// aggregations that recompute balances from first principles.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// liveRowPredicate selects rows whose delta is live in the balances as of
// $2: variable rows always, fixed rows only when applied and due. It is the
// SQL rendering of the currently-applied rule.
const liveRowPredicate = `
	(NOT is_fixed OR (is_balance_applied AND (transaction_date IS NULL OR transaction_date <= $2)))`

// AppliedSums recomputes, per account, the signed sum of every live
// transaction delta. Transfers contribute a debit leg on the source account
// and a credit leg on the destination.
func (r *LedgerRepository) AppliedSums(ctx context.Context, userID string, now time.Time) (map[string]domain.Delta, error) {
	query := `
		WITH live AS (
			SELECT account_id, transfer_account_id, type, total_bgn_cents, total_eur_cents
			FROM transactions
			WHERE user_id = $1 AND` + liveRowPredicate + `
		),
		legs AS (
			SELECT account_id,
			       CASE WHEN type = 'income' THEN total_bgn_cents ELSE -total_bgn_cents END AS bgn_cents,
			       CASE WHEN type = 'income' THEN total_eur_cents ELSE -total_eur_cents END AS eur_cents
			FROM live
			UNION ALL
			SELECT transfer_account_id, total_bgn_cents, total_eur_cents
			FROM live
			WHERE type = 'transfer' AND transfer_account_id IS NOT NULL
		)
		SELECT account_id, SUM(bgn_cents)::bigint, SUM(eur_cents)::bigint
		FROM legs
		GROUP BY account_id
	`

	rows, err := r.pool.Query(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[string]domain.Delta)
	for rows.Next() {
		var accountID string
		var delta domain.Delta
		if err := rows.Scan(&accountID, &delta.BGNCents, &delta.EURCents); err != nil {
			return nil, err
		}
		sums[accountID] = delta
	}

	return sums, rows.Err()
}

// CategoryTotals aggregates live rows per category over [from, to). Rows
// without a transaction date fall into the month they were created.
func (r *LedgerRepository) CategoryTotals(ctx context.Context, userID string, from, to time.Time) (map[string]domain.Delta, error) {
	query := `
		SELECT category,
		       SUM(CASE WHEN type = 'income' THEN total_bgn_cents ELSE -total_bgn_cents END)::bigint,
		       SUM(CASE WHEN type = 'income' THEN total_eur_cents ELSE -total_eur_cents END)::bigint
		FROM transactions
		WHERE user_id = $1
		  AND (NOT is_fixed OR (is_balance_applied AND (transaction_date IS NULL OR transaction_date <= now())))
		  AND COALESCE(transaction_date, created_at) >= $2
		  AND COALESCE(transaction_date, created_at) < $3
		GROUP BY category
	`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]domain.Delta)
	for rows.Next() {
		var category string
		var delta domain.Delta
		if err := rows.Scan(&category, &delta.BGNCents, &delta.EURCents); err != nil {
			return nil, err
		}
		totals[category] = delta
	}

	return totals, rows.Err()
}
