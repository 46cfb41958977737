package domain

import (
	"encoding/json"
	"time"
)

// HistorySnapshotMaxLen caps the serialized pre-edit snapshot. Oversized
// snapshots are truncated rather than failing the edit.
const HistorySnapshotMaxLen = 60000

// TransactionHistory is an append-only snapshot of a transaction's field
// values taken immediately before an edit. Pure audit trail; it never
// participates in balance computation.
type TransactionHistory struct {
	ID            string
	TransactionID string
	UserID        string
	OldData       string
	CreatedAt     time.Time
}

// historySnapshot is the serialized shape of the pre-edit state.
type historySnapshot struct {
	AccountID          string     `json:"accountId"`
	TransferAccountID  *string    `json:"transferAccountId,omitempty"`
	Type               string     `json:"transactionType"`
	MerchantName       string     `json:"merchantName"`
	Category           string     `json:"category"`
	IsFixed            bool       `json:"isFixed"`
	Notes              *string    `json:"notes,omitempty"`
	TransactionDate    *time.Time `json:"transactionDate,omitempty"`
	TotalBGNCents      int64      `json:"totalBgnCents"`
	TotalEURCents      int64      `json:"totalEurCents"`
	TotalOriginalCents *int64     `json:"totalOriginalCents,omitempty"`
	CurrencyOriginal   Currency   `json:"currencyOriginal,omitempty"`
}

// NewHistorySnapshot captures t's current field values as a history row.
func NewHistorySnapshot(id string, t *Transaction, now time.Time) (*TransactionHistory, error) {
	snap := historySnapshot{
		AccountID:          t.AccountID,
		TransferAccountID:  t.TransferAccountID,
		Type:               string(t.Type),
		MerchantName:       t.MerchantName,
		Category:           t.Category,
		IsFixed:            t.IsFixed,
		Notes:              t.Notes,
		TransactionDate:    t.TransactionDate,
		TotalBGNCents:      t.TotalBGNCents,
		TotalEURCents:      t.TotalEURCents,
		TotalOriginalCents: t.TotalOriginalCents,
		CurrencyOriginal:   t.CurrencyOriginal,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	old := string(data)
	if len(old) > HistorySnapshotMaxLen {
		old = old[:HistorySnapshotMaxLen]
	}

	return &TransactionHistory{
		ID:            id,
		TransactionID: t.ID,
		UserID:        t.UserID,
		OldData:       old,
		CreatedAt:     now,
	}, nil
}
