package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/velinov/fintrack/internal/domain"
)

// ExtractionUseCase commits AI-extracted receipts into the ledger. The
// model call and image storage live behind interfaces; only their validated
// output reaches the ledger core.
type ExtractionUseCase struct {
	extractor ReceiptExtractor
	store     ReceiptStore
	ledger    *LedgerUseCase
}

// NewExtractionUseCase creates a new ExtractionUseCase.
func NewExtractionUseCase(extractor ReceiptExtractor, store ReceiptStore, ledger *LedgerUseCase) *ExtractionUseCase {
	return &ExtractionUseCase{extractor: extractor, store: store, ledger: ledger}
}

// CreateFromExtractionInput represents input for committing an extraction.
type CreateFromExtractionInput struct {
	UserID    string
	AccountID string
	IsFixed   bool
	Result    domain.ExtractionResult
	ImageURL  *string
}

// CreateFromExtraction validates the extraction result and creates the
// expense through the ledger create path.
func (uc *ExtractionUseCase) CreateFromExtraction(ctx context.Context, input CreateFromExtractionInput) (*domain.Transaction, error) {
	if err := input.Result.Validate(); err != nil {
		return nil, err
	}
	data := input.Result.Data

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	bgn := data.TotalBGNCents
	eur := data.TotalEURCents

	return uc.ledger.Create(ctx, CreateTransactionInput{
		UserID:          input.UserID,
		AccountID:       input.AccountID,
		Type:            domain.TransactionTypeExpense,
		SourceType:      domain.SourceReceipt,
		IsFixed:         input.IsFixed,
		MerchantName:    data.Merchant,
		Category:        data.Category,
		TransactionDate: data.Date,
		Amount: domain.AmountInput{
			BGNCents: &bgn,
			EURCents: &eur,
		},
		OriginalImageURL: input.ImageURL,
		AIExtractedJSON:  raw,
	})
}

// ExtractAndCreate stores the uploaded image, runs the extraction model and
// commits the result.
func (uc *ExtractionUseCase) ExtractAndCreate(ctx context.Context, userID, accountID string, isFixed bool, image []byte, mimeType string) (*domain.Transaction, error) {
	result, err := uc.extractor.Extract(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("extract receipt: %w", err)
	}

	var imageURL *string
	if uc.store != nil {
		objectName := fmt.Sprintf("receipts/%s/%d", userID, time.Now().UTC().UnixNano())
		uri, err := uc.store.Save(ctx, objectName, image)
		if err != nil {
			return nil, fmt.Errorf("store receipt image: %w", err)
		}
		imageURL = &uri
	}

	return uc.CreateFromExtraction(ctx, CreateFromExtractionInput{
		UserID:    userID,
		AccountID: accountID,
		IsFixed:   isFixed,
		Result:    *result,
		ImageURL:  imageURL,
	})
}
