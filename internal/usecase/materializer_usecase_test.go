package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
	"github.com/velinov/fintrack/internal/usecase/mocks"
)

type materializerFixture struct {
	store        *mocks.Store
	ledger       *usecase.LedgerUseCase
	materializer *usecase.MaterializerUseCase
	clock        *time.Time
}

func newMaterializerFixture(t *testing.T) *materializerFixture {
	t.Helper()

	store := mocks.NewStore()
	store.AddAccount(&domain.Account{ID: "acc-a", UserID: "user-1", Name: "cash", Kind: domain.AccountKindCash})
	store.AddAccount(&domain.Account{ID: "acc-b", UserID: "user-1", Name: "bank", Kind: domain.AccountKindBank})

	clock := testNow
	f := &materializerFixture{store: store, clock: &clock}

	nowFn := func() time.Time { return *f.clock }

	f.ledger = usecase.NewLedgerUseCase(
		mocks.NewTxManager(store),
		mocks.NewAccountRepository(store),
		mocks.NewTransactionRepository(store),
		mocks.NewHistoryRepository(store),
		mocks.NewIDGenerator(),
	)
	f.ledger.SetClock(nowFn)

	f.materializer = usecase.NewMaterializerUseCase(
		mocks.NewTxManager(store),
		mocks.NewAccountRepository(store),
		mocks.NewTransactionRepository(store),
	)
	f.materializer.SetClock(nowFn)

	return f
}

func (f *materializerFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestMaterializerAppliesDueFixedExpenseExactlyOnce(t *testing.T) {
	f := newMaterializerFixture(t)
	ctx := context.Background()
	tomorrow := testNow.AddDate(0, 0, 1)

	_, err := f.ledger.Create(ctx, usecase.CreateTransactionInput{
		UserID:          "user-1",
		AccountID:       "acc-a",
		Type:            domain.TransactionTypeExpense,
		SourceType:      domain.SourceManual,
		IsFixed:         true,
		MerchantName:    "Landlord",
		Category:        "housing",
		TransactionDate: &tomorrow,
		Amount:          amountBGN("500.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Not yet due: the sweep must not apply anything.
	applied, err := f.materializer.ApplyDueFixedExpenses(ctx, "user-1")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if applied != 0 {
		t.Fatalf("nothing is due yet, applied %d", applied)
	}
	if bgn := f.store.Accounts["acc-a"].BalanceBGNCents; bgn != 0 {
		t.Fatalf("balance moved before due date: %d", bgn)
	}

	// Past the due date: exactly one delta.
	f.advance(48 * time.Hour)
	applied, err = f.materializer.ApplyDueFixedExpenses(ctx, "user-1")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 newly applied row, got %d", applied)
	}
	if bgn := f.store.Accounts["acc-a"].BalanceBGNCents; bgn != -50000 {
		t.Fatalf("expected -50000 after materialization, got %d", bgn)
	}

	// Immediately again: a no-op.
	applied, err = f.materializer.ApplyDueFixedExpenses(ctx, "user-1")
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if applied != 0 {
		t.Fatalf("second sweep must be a no-op, applied %d", applied)
	}
	if bgn := f.store.Accounts["acc-a"].BalanceBGNCents; bgn != -50000 {
		t.Fatalf("second sweep moved balances: %d", bgn)
	}
}

func TestMaterializerUnappliesFutureDatedRows(t *testing.T) {
	f := newMaterializerFixture(t)
	ctx := context.Background()

	// A row whose flag claims applied but whose date is in the future.
	// By invariant its delta was never posted, so only the flag changes.
	future := testNow.AddDate(0, 0, 5)
	f.store.AddTransaction(&domain.Transaction{
		ID:               "tx-stale",
		UserID:           "user-1",
		AccountID:        "acc-a",
		Type:             domain.TransactionTypeExpense,
		IsFixed:          true,
		IsBalanceApplied: true,
		TransactionDate:  &future,
		TotalBGNCents:    1000,
		TotalEURCents:    511,
		CreatedAt:        testNow.AddDate(0, 0, -30),
	})

	if _, err := f.materializer.ApplyDueFixedExpenses(ctx, "user-1"); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if f.store.Transactions["tx-stale"].IsBalanceApplied {
		t.Fatal("future-dated row still marked applied")
	}
	if bgn := f.store.Accounts["acc-a"].BalanceBGNCents; bgn != 0 {
		t.Fatalf("flag correction must not reverse balances: %d", bgn)
	}
}

func TestMaterializerUnappliesLegacyInvertedRows(t *testing.T) {
	f := newMaterializerFixture(t)
	ctx := context.Background()

	// Created before its nominal date and still marked applied: pre-sweep
	// data. The flag resets; pass 3 then re-applies it now that it is due.
	date := testNow.AddDate(0, 0, -2)
	f.store.AddTransaction(&domain.Transaction{
		ID:               "tx-legacy",
		UserID:           "user-1",
		AccountID:        "acc-a",
		Type:             domain.TransactionTypeExpense,
		IsFixed:          true,
		IsBalanceApplied: true,
		TransactionDate:  &date,
		TotalBGNCents:    2000,
		TotalEURCents:    1023,
		CreatedAt:        date.AddDate(0, 0, -10),
	})

	applied, err := f.materializer.ApplyDueFixedExpenses(ctx, "user-1")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if applied != 1 {
		t.Fatalf("legacy row should be re-applied once due, got %d", applied)
	}
	if !f.store.Transactions["tx-legacy"].IsBalanceApplied {
		t.Fatal("due legacy row must end applied")
	}
	if bgn := f.store.Accounts["acc-a"].BalanceBGNCents; bgn != -2000 {
		t.Fatalf("expected one posted delta, got %d", bgn)
	}

	// Once re-applied the row is no longer legacy: another sweep must leave
	// both the flag and the balance alone.
	applied, err = f.materializer.ApplyDueFixedExpenses(ctx, "user-1")
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if applied != 0 {
		t.Fatalf("second sweep must be a no-op, applied %d", applied)
	}
	if bgn := f.store.Accounts["acc-a"].BalanceBGNCents; bgn != -2000 {
		t.Fatalf("second sweep moved balances: %d", bgn)
	}
}

func TestMaterializerAppliesBothTransferLegs(t *testing.T) {
	f := newMaterializerFixture(t)
	ctx := context.Background()

	dst := "acc-b"
	due := testNow.AddDate(0, 0, -1)
	f.store.AddTransaction(&domain.Transaction{
		ID:                "tx-transfer",
		UserID:            "user-1",
		AccountID:         "acc-a",
		TransferAccountID: &dst,
		Type:              domain.TransactionTypeTransfer,
		IsFixed:           true,
		IsBalanceApplied:  false,
		TransactionDate:   &due,
		TotalBGNCents:     9779,
		TotalEURCents:     5000,
		CreatedAt:         due,
	})

	applied, err := f.materializer.ApplyDueFixedExpenses(ctx, "user-1")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied row, got %d", applied)
	}

	if eur := f.store.Accounts["acc-a"].BalanceEURCents; eur != -5000 {
		t.Fatalf("debit leg: %d", eur)
	}
	if eur := f.store.Accounts["acc-b"].BalanceEURCents; eur != 5000 {
		t.Fatalf("credit leg: %d", eur)
	}
}

func TestMaterializerScopedToUser(t *testing.T) {
	f := newMaterializerFixture(t)
	ctx := context.Background()

	f.store.AddAccount(&domain.Account{ID: "acc-z", UserID: "user-2", Name: "cash", Kind: domain.AccountKindCash})
	due := testNow.AddDate(0, 0, -1)
	f.store.AddTransaction(&domain.Transaction{
		ID:               "tx-other-user",
		UserID:           "user-2",
		AccountID:        "acc-z",
		Type:             domain.TransactionTypeExpense,
		IsFixed:          true,
		IsBalanceApplied: false,
		TransactionDate:  &due,
		TotalBGNCents:    1000,
		TotalEURCents:    511,
		CreatedAt:        due,
	})

	applied, err := f.materializer.ApplyDueFixedExpenses(ctx, "user-1")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if applied != 0 {
		t.Fatalf("sweep crossed user boundary, applied %d", applied)
	}
	if f.store.Transactions["tx-other-user"].IsBalanceApplied {
		t.Fatal("other user's row was touched")
	}
}
