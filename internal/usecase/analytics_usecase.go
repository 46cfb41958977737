package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// AnalyticsUseCase serves read-only aggregations over the ledger.
type AnalyticsUseCase struct {
	ledgerRepo   LedgerRepository
	materializer *MaterializerUseCase
	cache        Cache
}

// NewAnalyticsUseCase creates a new AnalyticsUseCase.
func NewAnalyticsUseCase(ledgerRepo LedgerRepository, materializer *MaterializerUseCase, cache Cache) *AnalyticsUseCase {
	return &AnalyticsUseCase{ledgerRepo: ledgerRepo, materializer: materializer, cache: cache}
}

// CategoryTotal is one category's signed dual-currency total for a window.
type CategoryTotal struct {
	Category string `json:"category"`
	BGNCents int64  `json:"bgnCents"`
	EURCents int64  `json:"eurCents"`
}

// CategorySummary aggregates a month's transactions per category. The sweep
// runs first so due fixed expenses are included; results are cached
// briefly per user and month.
func (uc *AnalyticsUseCase) CategorySummary(ctx context.Context, userID string, year int, month time.Month) ([]CategoryTotal, error) {
	if _, err := uc.materializer.ApplyDueFixedExpenses(ctx, userID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("categories:%s:%04d-%02d", userID, year, int(month))
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil && cached != "" {
			var totals []CategoryTotal
			if err := json.Unmarshal([]byte(cached), &totals); err == nil {
				return totals, nil
			}
		}
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	byCategory, err := uc.ledgerRepo.CategoryTotals(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for category, delta := range byCategory {
		totals = append(totals, CategoryTotal{
			Category: category,
			BGNCents: delta.BGNCents,
			EURCents: delta.EURCents,
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })

	if uc.cache != nil {
		if data, err := json.Marshal(totals); err == nil {
			_ = uc.cache.Set(ctx, key, string(data), CategorySummaryTTL)
		}
	}

	return totals, nil
}

