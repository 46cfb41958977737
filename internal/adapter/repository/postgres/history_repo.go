package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
)

// HistoryRepository implements usecase.HistoryRepository.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Create inserts a pre-edit snapshot inside the caller's transaction.
func (r *HistoryRepository) Create(ctx context.Context, tx usecase.Transaction, h *domain.TransactionHistory) error {
	query := `
		INSERT INTO transaction_history (id, transaction_id, user_id, old_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		h.ID,
		h.TransactionID,
		h.UserID,
		h.OldData,
		h.CreatedAt,
	)

	return err
}

// DeleteByTransaction removes all snapshots of one entry. Runs before the
// entry itself is deleted to satisfy the foreign key.
func (r *HistoryRepository) DeleteByTransaction(ctx context.Context, tx usecase.Transaction, transactionID string) error {
	_, err := txQuerier(tx).Exec(ctx, `DELETE FROM transaction_history WHERE transaction_id = $1`, transactionID)
	return err
}

// ListByTransaction retrieves an entry's snapshots, oldest first.
func (r *HistoryRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionHistory, error) {
	query := `
		SELECT id, transaction_id, user_id, old_data, created_at
		FROM transaction_history
		WHERE transaction_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TransactionHistory
	for rows.Next() {
		var h domain.TransactionHistory
		if err := rows.Scan(&h.ID, &h.TransactionID, &h.UserID, &h.OldData, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &h)
	}

	return out, rows.Err()
}
