package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velinov/fintrack/internal/domain"
)

// RecurringRepository implements usecase.RecurringRepository.
type RecurringRepository struct {
	pool *pgxpool.Pool
}

// NewRecurringRepository creates a new RecurringRepository.
func NewRecurringRepository(pool *pgxpool.Pool) *RecurringRepository {
	return &RecurringRepository{pool: pool}
}

const templateColumns = `id, user_id, account_id, name, amount, category, sub_category,
	payment_day, note, is_active, created_at, updated_at`

// Create inserts a new template.
func (r *RecurringRepository) Create(ctx context.Context, template *domain.RecurringTemplate) error {
	query := `
		INSERT INTO recurring_templates (
			id, user_id, account_id, name, amount, category, sub_category,
			payment_day, note, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		template.ID,
		template.UserID,
		template.AccountID,
		template.Name,
		decimalToNumeric(template.Amount),
		template.Category,
		template.SubCategory,
		template.PaymentDay,
		template.Note,
		template.IsActive,
		template.CreatedAt,
		template.UpdatedAt,
	)

	return err
}

// GetOwned retrieves a template scoped to its owner.
func (r *RecurringRepository) GetOwned(ctx context.Context, userID, id string) (*domain.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates WHERE id = $1 AND user_id = $2`

	template, err := scanTemplate(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}

		return nil, err
	}

	return template, nil
}

// Update rewrites a template's mutable columns.
func (r *RecurringRepository) Update(ctx context.Context, template *domain.RecurringTemplate) error {
	query := `
		UPDATE recurring_templates
		SET account_id = $3,
		    name = $4,
		    amount = $5,
		    category = $6,
		    sub_category = $7,
		    payment_day = $8,
		    note = $9,
		    is_active = $10,
		    updated_at = $11
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		template.ID,
		template.UserID,
		template.AccountID,
		template.Name,
		decimalToNumeric(template.Amount),
		template.Category,
		template.SubCategory,
		template.PaymentDay,
		template.Note,
		template.IsActive,
		template.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}

	return nil
}

// Delete removes an owned template.
func (r *RecurringRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recurring_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}

	return nil
}

// ListActive retrieves a user's active templates.
func (r *RecurringRepository) ListActive(ctx context.Context, userID string) ([]*domain.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates
		WHERE user_id = $1 AND is_active
		ORDER BY payment_day, name`

	return r.list(ctx, query, userID)
}

// ListByUser retrieves all of a user's templates.
func (r *RecurringRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates
		WHERE user_id = $1
		ORDER BY payment_day, name`

	return r.list(ctx, query, userID)
}

func (r *RecurringRepository) list(ctx context.Context, query, userID string) ([]*domain.RecurringTemplate, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.RecurringTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, template)
	}

	return out, rows.Err()
}

func scanTemplate(row pgx.Row) (*domain.RecurringTemplate, error) {
	var template domain.RecurringTemplate
	var amount pgtype.Numeric

	err := row.Scan(
		&template.ID,
		&template.UserID,
		&template.AccountID,
		&template.Name,
		&amount,
		&template.Category,
		&template.SubCategory,
		&template.PaymentDay,
		&template.Note,
		&template.IsActive,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	template.Amount = numericToDecimal(amount)

	return &template, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}
