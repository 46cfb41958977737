package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, user_id, name, kind, balance_bgn_cents, balance_eur_cents, created_at, updated_at`

// Create inserts a new account outside any transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.create(ctx, r.pool, account)
}

// CreateTx inserts a new account inside the caller's transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.create(ctx, txQuerier(tx), account)
}

func (r *AccountRepository) create(ctx context.Context, q querier, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, kind, balance_bgn_cents, balance_eur_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.Name,
		account.Kind,
		account.BalanceBGNCents,
		account.BalanceEURCents,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

// GetOwned retrieves an account scoped to its owner.
func (r *AccountRepository) GetOwned(ctx context.Context, userID, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// ApplyDelta atomically increments both balance columns by the signed
// delta, inside the caller's transaction. The increment form makes the
// statement commutative under concurrency; no read-modify-write.
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, id string, delta domain.Delta) error {
	query := `
		UPDATE accounts
		SET balance_bgn_cents = balance_bgn_cents + $2,
		    balance_eur_cents = balance_eur_cents + $3,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := txQuerier(tx).Exec(ctx, query, id, delta.BGNCents, delta.EURCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// SetBalances overwrites both balance columns. Only the audit backfill uses
// this; everything else moves balances through ApplyDelta.
func (r *AccountRepository) SetBalances(ctx context.Context, tx usecase.Transaction, id string, bgnCents, eurCents int64) error {
	query := `
		UPDATE accounts
		SET balance_bgn_cents = $2,
		    balance_eur_cents = $3,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := txQuerier(tx).Exec(ctx, query, id, bgnCents, eurCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ListByUser retrieves all of a user's accounts.
func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Kind,
		&account.BalanceBGNCents,
		&account.BalanceEURCents,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &account, nil
}
