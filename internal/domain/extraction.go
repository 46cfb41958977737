package domain

import "time"

// ExtractionStatus is the outcome reported by the receipt extraction model.
type ExtractionStatus string

const (
	ExtractionSuccess ExtractionStatus = "success"
	ExtractionFailed  ExtractionStatus = "failed"
)

// ExtractionItem is one receipt line with its model-assigned category.
type ExtractionItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	BGNCents int64  `json:"bgnCents"`
	EURCents int64  `json:"eurCents"`
}

// ExtractionData is the structured payload pulled out of a receipt image.
type ExtractionData struct {
	Merchant      string           `json:"merchant"`
	Date          *time.Time       `json:"date,omitempty"`
	TotalBGNCents int64            `json:"totalBgnCents"`
	TotalEURCents int64            `json:"totalEurCents"`
	Category      string           `json:"category"`
	Items         []ExtractionItem `json:"items"`
}

// ExtractionResult wraps the model output with its status.
type ExtractionResult struct {
	Status ExtractionStatus `json:"status"`
	Data   *ExtractionData  `json:"data"`
}

// Validate rejects results that must not reach the ledger.
func (r *ExtractionResult) Validate() error {
	if r.Status != ExtractionSuccess {
		return ErrExtractionNotReady
	}
	if r.Data == nil {
		return ErrExtractionEmpty
	}
	if r.Data.TotalBGNCents < 0 || r.Data.TotalEURCents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
