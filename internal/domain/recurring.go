package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecurringTemplate is a recipe for a future fixed expense. It is not a
// ledger entry itself; the auto-poster turns due templates into real
// transactions.
type RecurringTemplate struct {
	ID          string
	UserID      string
	AccountID   string
	Name        string
	Amount      decimal.Decimal // BGN-denominated
	Category    string
	SubCategory string
	PaymentDay  int // 1..31, clamped to the target month's length
	Note        *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks template fields before persistence.
func (rt *RecurringTemplate) Validate() error {
	if rt.AccountID == "" {
		return ErrAccountRequired
	}
	if rt.PaymentDay < 1 || rt.PaymentDay > 31 {
		return ErrInvalidPaymentDay
	}
	if rt.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// DueDateForMonth returns the template's occurrence in the given month,
// with the payment day clamped to the month's actual length.
func (rt *RecurringTemplate) DueDateForMonth(year int, month time.Month, loc *time.Location) time.Time {
	day := rt.PaymentDay
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// NextDueDate returns this month's occurrence if it has not passed,
// otherwise next month's.
func (rt *RecurringTemplate) NextDueDate(now time.Time) time.Time {
	due := rt.DueDateForMonth(now.Year(), now.Month(), now.Location())
	if due.Before(now.Truncate(24 * time.Hour)) {
		next := now.AddDate(0, 1, -now.Day()+1)
		due = rt.DueDateForMonth(next.Year(), next.Month(), now.Location())
	}
	return due
}

// Matches reports whether tx looks like a posting of this template.
// Rows generated after template linkage was introduced match by id; older
// rows fall back to the trimmed-name + category + account heuristic.
func (rt *RecurringTemplate) Matches(tx *Transaction) bool {
	if tx.RecurringTemplateID != nil {
		return *tx.RecurringTemplateID == rt.ID
	}
	return strings.TrimSpace(tx.MerchantName) == strings.TrimSpace(rt.Name) &&
		tx.Category == rt.Category &&
		tx.AccountID == rt.AccountID
}

// MatchesOn additionally requires the same calendar date.
func (rt *RecurringTemplate) MatchesOn(tx *Transaction, due time.Time) bool {
	if !rt.Matches(tx) {
		return false
	}
	if tx.TransactionDate == nil {
		return false
	}
	y1, m1, d1 := tx.TransactionDate.Date()
	y2, m2, d2 := due.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
