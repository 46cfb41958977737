package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// CreateTransactionRequest represents a request to create a ledger entry.
// Amounts may arrive as exact cents or as decimal amounts in either
// currency; the resolution order is handled downstream.
type CreateTransactionRequest struct {
	AccountID         string           `json:"account_id"`
	TransferAccountID *string          `json:"transfer_account_id,omitempty"`
	Type              string           `json:"type"`
	IsFixed           bool             `json:"is_fixed"`
	MerchantName      string           `json:"merchant_name"`
	Category          string           `json:"category"`
	TransactionDate   *time.Time       `json:"transaction_date,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
	EURCents          *int64           `json:"eur_cents,omitempty"`
	BGNCents          *int64           `json:"bgn_cents,omitempty"`
	EURAmount         *decimal.Decimal `json:"eur_amount,omitempty"`
	BGNAmount         *decimal.Decimal `json:"bgn_amount,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	Currency          string           `json:"currency,omitempty"`
}

// ToUseCaseInput converts to use case input for the given user.
func (r *CreateTransactionRequest) ToUseCaseInput(userID string) usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		UserID:            userID,
		AccountID:         r.AccountID,
		TransferAccountID: r.TransferAccountID,
		Type:              domain.TransactionType(r.Type),
		SourceType:        domain.SourceManual,
		IsFixed:           r.IsFixed,
		MerchantName:      r.MerchantName,
		Category:          r.Category,
		TransactionDate:   r.TransactionDate,
		Notes:             r.Notes,
		Amount: domain.AmountInput{
			EURCents:         r.EURCents,
			BGNCents:         r.BGNCents,
			EURAmount:        r.EURAmount,
			BGNAmount:        r.BGNAmount,
			OriginalAmount:   r.Amount,
			OriginalCurrency: domain.Currency(r.Currency),
		},
	}
}

// UpdateTransactionRequest represents a partial edit of a ledger entry.
// Absent fields keep their stored values.
type UpdateTransactionRequest struct {
	AccountID         *string          `json:"account_id,omitempty"`
	TransferAccountID *string          `json:"transfer_account_id,omitempty"`
	Type              *string          `json:"type,omitempty"`
	MerchantName      *string          `json:"merchant_name,omitempty"`
	Category          *string          `json:"category,omitempty"`
	IsFixed           *bool            `json:"is_fixed,omitempty"`
	TransactionDate   *time.Time       `json:"transaction_date,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	Currency          *string          `json:"currency,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput() usecase.UpdateTransactionInput {
	input := usecase.UpdateTransactionInput{
		AccountID:         r.AccountID,
		TransferAccountID: r.TransferAccountID,
		MerchantName:      r.MerchantName,
		Category:          r.Category,
		IsFixed:           r.IsFixed,
		TransactionDate:   r.TransactionDate,
		Amount:            r.Amount,
		Notes:             r.Notes,
	}
	if r.Type != nil {
		t := domain.TransactionType(*r.Type)
		input.Type = &t
	}
	if r.Currency != nil {
		c := domain.Currency(*r.Currency)
		input.Currency = &c
	}
	return input
}

// CreateTransferRequest represents a request to move money between two
// accounts of the same user.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          *time.Time      `json:"date,omitempty"`
	Note          *string         `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input for the given user.
func (r *CreateTransferRequest) ToUseCaseInput(userID string) usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		UserID:        userID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Currency:      domain.Currency(r.Currency),
		Date:          r.Date,
		Note:          r.Note,
	}
}

// RecurringTemplateRequest represents a request to create or update a
// recurring payment template.
type RecurringTemplateRequest struct {
	AccountID   string          `json:"account_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category,omitempty"`
	PaymentDay  int             `json:"payment_day"`
	Note        *string         `json:"note,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

// ToDomain builds a template for the given user. New templates default to
// active unless the request says otherwise.
func (r *RecurringTemplateRequest) ToDomain(userID string) *domain.RecurringTemplate {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &domain.RecurringTemplate{
		UserID:      userID,
		AccountID:   r.AccountID,
		Name:        r.Name,
		Amount:      r.Amount,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		PaymentDay:  r.PaymentDay,
		Note:        r.Note,
		IsActive:    active,
	}
}
