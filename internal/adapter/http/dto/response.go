package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Kind            string    `json:"kind"`
	BalanceBGNCents int64     `json:"balance_bgn_cents"`
	BalanceEURCents int64     `json:"balance_eur_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:              a.ID,
		Name:            a.Name,
		Kind:            string(a.Kind),
		BalanceBGNCents: a.BalanceBGNCents,
		BalanceEURCents: a.BalanceEURCents,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID                  string          `json:"id"`
	AccountID           string          `json:"account_id"`
	TransferAccountID   *string         `json:"transfer_account_id,omitempty"`
	Type                string          `json:"type"`
	SourceType          string          `json:"source_type"`
	IsFixed             bool            `json:"is_fixed"`
	IsBalanceApplied    bool            `json:"is_balance_applied"`
	MerchantName        string          `json:"merchant_name"`
	Category            string          `json:"category"`
	TransactionDate     *time.Time      `json:"transaction_date,omitempty"`
	TotalBGNCents       int64           `json:"total_bgn_cents"`
	TotalEURCents       int64           `json:"total_eur_cents"`
	TotalOriginalCents  *int64          `json:"total_original_cents,omitempty"`
	CurrencyOriginal    string          `json:"currency_original,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
	IsEdited            bool            `json:"is_edited"`
	OriginalImageURL    *string         `json:"original_image_url,omitempty"`
	ExtractedData       json.RawMessage `json:"extracted_data,omitempty"`
	RecurringTemplateID *string         `json:"recurring_template_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                  t.ID,
		AccountID:           t.AccountID,
		TransferAccountID:   t.TransferAccountID,
		Type:                string(t.Type),
		SourceType:          string(t.SourceType),
		IsFixed:             t.IsFixed,
		IsBalanceApplied:    t.IsBalanceApplied,
		MerchantName:        t.MerchantName,
		Category:            t.Category,
		TransactionDate:     t.TransactionDate,
		TotalBGNCents:       t.TotalBGNCents,
		TotalEURCents:       t.TotalEURCents,
		TotalOriginalCents:  t.TotalOriginalCents,
		CurrencyOriginal:    string(t.CurrencyOriginal),
		Notes:               t.Notes,
		IsEdited:            t.IsEdited,
		OriginalImageURL:    t.OriginalImageURL,
		ExtractedData:       json.RawMessage(t.AIExtractedJSON),
		RecurringTemplateID: t.RecurringTemplateID,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// HistoryResponse represents one pre-edit snapshot of a ledger entry.
type HistoryResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	OldData       json.RawMessage `json:"old_data"`
	CreatedAt     time.Time       `json:"created_at"`
}

// HistoryFromDomain converts domain history rows to responses.
func HistoryFromDomain(rows []*domain.TransactionHistory) []*HistoryResponse {
	result := make([]*HistoryResponse, len(rows))
	for i, h := range rows {
		result[i] = &HistoryResponse{
			ID:            h.ID,
			TransactionID: h.TransactionID,
			OldData:       json.RawMessage(h.OldData),
			CreatedAt:     h.CreatedAt,
		}
	}
	return result
}

// TemplateResponse represents a recurring template in API responses.
type TemplateResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category,omitempty"`
	PaymentDay  int             `json:"payment_day"`
	Note        *string         `json:"note,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TemplateFromDomain converts a domain template to a response.
func TemplateFromDomain(t *domain.RecurringTemplate) *TemplateResponse {
	return &TemplateResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Name:        t.Name,
		Amount:      t.Amount,
		Category:    t.Category,
		SubCategory: t.SubCategory,
		PaymentDay:  t.PaymentDay,
		Note:        t.Note,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TemplatesFromDomain converts domain templates to responses.
func TemplatesFromDomain(templates []*domain.RecurringTemplate) []*TemplateResponse {
	result := make([]*TemplateResponse, len(templates))
	for i, t := range templates {
		result[i] = TemplateFromDomain(t)
	}
	return result
}

// UpcomingPaymentResponse represents one upcoming template occurrence.
type UpcomingPaymentResponse struct {
	Template *TemplateResponse `json:"template"`
	DueDate  time.Time         `json:"due_date"`
	Paid     bool              `json:"paid"`
}

// UpcomingFromUseCase converts upcoming payments to responses.
func UpcomingFromUseCase(payments []usecase.UpcomingPayment) []*UpcomingPaymentResponse {
	result := make([]*UpcomingPaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = &UpcomingPaymentResponse{
			Template: TemplateFromDomain(p.Template),
			DueDate:  p.DueDate,
			Paid:     p.Paid,
		}
	}
	return result
}

// SweepResponse reports how many due fixed expenses a sweep applied.
type SweepResponse struct {
	Applied int `json:"applied"`
}

// PostDueResponse reports how many recurring occurrences were posted.
type PostDueResponse struct {
	Posted int `json:"posted"`
}

// AuditRowResponse represents one account's audit line.
type AuditRowResponse struct {
	AccountID        string `json:"account_id"`
	Name             string `json:"name"`
	StoredBGNCents   int64  `json:"stored_bgn_cents"`
	StoredEURCents   int64  `json:"stored_eur_cents"`
	ExpectedBGNCents int64  `json:"expected_bgn_cents"`
	ExpectedEURCents int64  `json:"expected_eur_cents"`
	Consistent       bool   `json:"consistent"`
}

// AuditResponse is the full audit report.
type AuditResponse struct {
	Consistent bool                `json:"consistent"`
	Accounts   []*AuditRowResponse `json:"accounts"`
}

// AuditFromUseCase converts audit rows to a response.
func AuditFromUseCase(rows []usecase.AccountAuditRow) *AuditResponse {
	resp := &AuditResponse{
		Consistent: true,
		Accounts:   make([]*AuditRowResponse, len(rows)),
	}
	for i, row := range rows {
		if !row.Consistent {
			resp.Consistent = false
		}
		resp.Accounts[i] = &AuditRowResponse{
			AccountID:        row.AccountID,
			Name:             row.Name,
			StoredBGNCents:   row.StoredBGNCents,
			StoredEURCents:   row.StoredEURCents,
			ExpectedBGNCents: row.ExpectedBGNCents,
			ExpectedEURCents: row.ExpectedEURCents,
			Consistent:       row.Consistent,
		}
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
