package dto

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/velinov/fintrack/internal/domain"
)

func TestCreateTransactionRequestToUseCaseInput(t *testing.T) {
	amount := decimal.RequireFromString("45.90")
	date := testDate(t, "2026-03-10T00:00:00Z")

	req := &CreateTransactionRequest{
		AccountID:       "acc-1",
		Type:            "expense",
		IsFixed:         true,
		MerchantName:    "EVN",
		Category:        "utilities",
		TransactionDate: &date,
		Amount:          &amount,
		Currency:        "BGN",
	}

	input := req.ToUseCaseInput("user-1")

	if input.UserID != "user-1" || input.AccountID != "acc-1" {
		t.Fatalf("identity fields not mapped: %+v", input)
	}
	if input.Type != domain.TransactionTypeExpense {
		t.Fatalf("expected expense type, got %s", input.Type)
	}
	if input.SourceType != domain.SourceManual {
		t.Fatalf("API-created entries must be manual, got %s", input.SourceType)
	}
	if !input.IsFixed || input.TransactionDate == nil || !input.TransactionDate.Equal(date) {
		t.Fatalf("fixed/date fields not mapped: %+v", input)
	}
	if input.Amount.OriginalAmount == nil || !input.Amount.OriginalAmount.Equal(amount) {
		t.Fatalf("original amount not mapped: %+v", input.Amount)
	}
	if input.Amount.OriginalCurrency != domain.CurrencyBGN {
		t.Fatalf("original currency not mapped: %s", input.Amount.OriginalCurrency)
	}
}

func TestUpdateTransactionRequestConvertsEnums(t *testing.T) {
	typ := "income"
	cur := "EUR"
	req := &UpdateTransactionRequest{Type: &typ, Currency: &cur}

	input := req.ToUseCaseInput()

	if input.Type == nil || *input.Type != domain.TransactionTypeIncome {
		t.Fatalf("type not converted: %+v", input.Type)
	}
	if input.Currency == nil || *input.Currency != domain.CurrencyEUR {
		t.Fatalf("currency not converted: %+v", input.Currency)
	}
	if input.MerchantName != nil {
		t.Fatal("absent fields must stay nil")
	}
}

func TestRecurringTemplateRequestDefaultsToActive(t *testing.T) {
	req := &RecurringTemplateRequest{
		AccountID:  "acc-1",
		Name:       "Rent",
		Amount:     decimal.RequireFromString("450.00"),
		Category:   "housing",
		PaymentDay: 10,
	}

	tpl := req.ToDomain("user-1")
	if !tpl.IsActive {
		t.Fatal("new templates must default to active")
	}
	if tpl.UserID != "user-1" || tpl.PaymentDay != 10 {
		t.Fatalf("fields not mapped: %+v", tpl)
	}

	inactive := false
	req.IsActive = &inactive
	if tpl := req.ToDomain("user-1"); tpl.IsActive {
		t.Fatal("explicit is_active=false must be honored")
	}
}
