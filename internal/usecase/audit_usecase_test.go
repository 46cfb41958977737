package usecase_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
	"github.com/velinov/fintrack/internal/usecase/mocks"
)

func TestAuditReportsDrift(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := mocks.NewStore()
	store.AddAccount(&domain.Account{
		ID: "acc-a", UserID: "user-1", Name: "cash", Kind: domain.AccountKindCash,
		BalanceBGNCents: -3000, BalanceEURCents: -1534,
	})
	store.AddAccount(&domain.Account{
		ID: "acc-b", UserID: "user-1", Name: "bank", Kind: domain.AccountKindBank,
		BalanceBGNCents: -9999, BalanceEURCents: -5113,
	})

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	ledgerRepo.EXPECT().AppliedSums(gomock.Any(), "user-1", testNow).Return(map[string]domain.Delta{
		"acc-a": {BGNCents: -3000, EURCents: -1534},
		"acc-b": {BGNCents: -5000, EURCents: -2556},
	}, nil)

	audit := usecase.NewAuditUseCase(mocks.NewTxManager(store), mocks.NewAccountRepository(store), ledgerRepo)
	audit.SetClock(func() time.Time { return testNow })

	rows, err := audit.Audit(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	byID := map[string]usecase.AccountAuditRow{}
	for _, row := range rows {
		byID[row.AccountID] = row
	}
	if !byID["acc-a"].Consistent {
		t.Fatal("acc-a matches its applied sums, must be consistent")
	}
	if byID["acc-b"].Consistent {
		t.Fatal("acc-b has drifted, must be inconsistent")
	}
	if byID["acc-b"].ExpectedBGNCents != -5000 {
		t.Fatalf("expected sums: %d", byID["acc-b"].ExpectedBGNCents)
	}

	// No backfill requested: stored balances stay drifted.
	if store.Accounts["acc-b"].BalanceBGNCents != -9999 {
		t.Fatal("audit without backfill must not write")
	}
}

func TestAuditBackfillRewritesDriftedAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := mocks.NewStore()
	store.AddAccount(&domain.Account{
		ID: "acc-a", UserID: "user-1", Name: "cash", Kind: domain.AccountKindCash,
		BalanceBGNCents: 100, BalanceEURCents: 51,
	})
	store.AddAccount(&domain.Account{
		ID: "acc-b", UserID: "user-1", Name: "bank", Kind: domain.AccountKindBank,
		BalanceBGNCents: 2000, BalanceEURCents: 1023,
	})

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	ledgerRepo.EXPECT().AppliedSums(gomock.Any(), "user-1", testNow).Return(map[string]domain.Delta{
		"acc-a": {BGNCents: 100, EURCents: 51},
		"acc-b": {BGNCents: 7000, EURCents: 3579},
	}, nil)

	audit := usecase.NewAuditUseCase(mocks.NewTxManager(store), mocks.NewAccountRepository(store), ledgerRepo)
	audit.SetClock(func() time.Time { return testNow })

	rows, err := audit.Audit(context.Background(), "user-1", true)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// Only the drifted account gets rewritten; the consistent one is untouched.
	if got := store.Accounts["acc-b"].BalanceBGNCents; got != 7000 {
		t.Fatalf("backfill BGN: %d", got)
	}
	if got := store.Accounts["acc-b"].BalanceEURCents; got != 3579 {
		t.Fatalf("backfill EUR: %d", got)
	}
	if got := store.Accounts["acc-a"].BalanceBGNCents; got != 100 {
		t.Fatalf("consistent account rewritten: %d", got)
	}
}

func TestAuditAccountWithNoTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := mocks.NewStore()
	store.AddAccount(&domain.Account{ID: "acc-a", UserID: "user-1", Name: "cash", Kind: domain.AccountKindCash})

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	ledgerRepo.EXPECT().AppliedSums(gomock.Any(), "user-1", testNow).Return(map[string]domain.Delta{}, nil)

	audit := usecase.NewAuditUseCase(mocks.NewTxManager(store), mocks.NewAccountRepository(store), ledgerRepo)
	audit.SetClock(func() time.Time { return testNow })

	rows, err := audit.Audit(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(rows) != 1 || !rows[0].Consistent {
		t.Fatalf("zero-balance account with no rows must be consistent: %+v", rows)
	}
}
