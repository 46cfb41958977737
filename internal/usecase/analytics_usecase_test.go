package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
	"github.com/velinov/fintrack/internal/usecase/mocks"
)

func newAnalyticsFixture(t *testing.T) (*usecase.AnalyticsUseCase, *mocks.MockLedgerRepository, *mocks.MockCache) {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := mocks.NewStore()
	materializer := usecase.NewMaterializerUseCase(
		mocks.NewTxManager(store),
		mocks.NewAccountRepository(store),
		mocks.NewTransactionRepository(store),
	)
	materializer.SetClock(func() time.Time { return testNow })

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	cache := mocks.NewMockCache(ctrl)

	return usecase.NewAnalyticsUseCase(ledgerRepo, materializer, cache), ledgerRepo, cache
}

func TestCategorySummaryAggregatesAndCaches(t *testing.T) {
	analytics, ledgerRepo, cache := newAnalyticsFixture(t)
	ctx := context.Background()

	key := "categories:user-1:2026-03"
	cache.EXPECT().Get(gomock.Any(), key).Return("", errors.New("redis: nil"))

	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	ledgerRepo.EXPECT().CategoryTotals(gomock.Any(), "user-1", from, to).Return(map[string]domain.Delta{
		"housing":   {BGNCents: -45000, EURCents: -23008},
		"groceries": {BGNCents: -12000, EURCents: -6136},
	}, nil)
	cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), usecase.CategorySummaryTTL).Return(nil)

	totals, err := analytics.CategorySummary(ctx, "user-1", 2026, time.March)
	if err != nil {
		t.Fatalf("category summary: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	// Sorted by category name for deterministic output.
	if totals[0].Category != "groceries" || totals[1].Category != "housing" {
		t.Fatalf("order: %s, %s", totals[0].Category, totals[1].Category)
	}
	if totals[1].BGNCents != -45000 || totals[1].EURCents != -23008 {
		t.Fatalf("housing totals: %+v", totals[1])
	}
}

func TestCategorySummaryServesFromCache(t *testing.T) {
	analytics, _, cache := newAnalyticsFixture(t)
	ctx := context.Background()

	cached, _ := json.Marshal([]usecase.CategoryTotal{
		{Category: "transport", BGNCents: -2340, EURCents: -1196},
	})
	cache.EXPECT().Get(gomock.Any(), "categories:user-1:2026-03").Return(string(cached), nil)

	totals, err := analytics.CategorySummary(ctx, "user-1", 2026, time.March)
	if err != nil {
		t.Fatalf("category summary: %v", err)
	}
	if len(totals) != 1 || totals[0].Category != "transport" {
		t.Fatalf("cache hit must bypass the repository: %+v", totals)
	}
}

func TestCategorySummaryIgnoresCorruptCache(t *testing.T) {
	analytics, ledgerRepo, cache := newAnalyticsFixture(t)
	ctx := context.Background()

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return("{not json", nil)
	ledgerRepo.EXPECT().CategoryTotals(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).Return(map[string]domain.Delta{}, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	totals, err := analytics.CategorySummary(ctx, "user-1", 2026, time.March)
	if err != nil {
		t.Fatalf("category summary: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected empty result, got %+v", totals)
	}
}
