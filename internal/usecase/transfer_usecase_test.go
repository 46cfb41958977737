package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
	"github.com/velinov/fintrack/internal/usecase/mocks"
)

type transferFixture struct {
	store    *mocks.Store
	transfer *usecase.TransferUseCase
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()

	store := mocks.NewStore()
	store.AddAccount(&domain.Account{ID: "acc-a", UserID: "user-1", Name: "cash", Kind: domain.AccountKindCash})
	store.AddAccount(&domain.Account{ID: "acc-b", UserID: "user-1", Name: "savings", Kind: domain.AccountKindSavings})
	store.AddAccount(&domain.Account{ID: "acc-z", UserID: "user-2", Name: "cash", Kind: domain.AccountKindCash})

	ledger := usecase.NewLedgerUseCase(
		mocks.NewTxManager(store),
		mocks.NewAccountRepository(store),
		mocks.NewTransactionRepository(store),
		mocks.NewHistoryRepository(store),
		mocks.NewIDGenerator(),
	)
	ledger.SetClock(func() time.Time { return testNow })

	return &transferFixture{
		store:    store,
		transfer: usecase.NewTransferUseCase(mocks.NewAccountRepository(store), ledger),
	}
}

func TestCreateTransferMovesBothLegs(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	tx, err := f.transfer.CreateTransfer(ctx, usecase.CreateTransferInput{
		UserID:        "user-1",
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        decimal.RequireFromString("50.00"),
		Currency:      domain.CurrencyEUR,
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}

	if tx.Type != domain.TransactionTypeTransfer || tx.SourceType != domain.SourceTransfer {
		t.Fatalf("wrong row shape: type=%s source=%s", tx.Type, tx.SourceType)
	}
	if tx.TransferAccountID == nil || *tx.TransferAccountID != "acc-b" {
		t.Fatal("destination leg missing")
	}
	if tx.MerchantName != "cash -> savings" {
		t.Fatalf("merchant label: %q", tx.MerchantName)
	}

	from := f.store.Accounts["acc-a"]
	to := f.store.Accounts["acc-b"]
	if from.BalanceEURCents != -5000 || to.BalanceEURCents != 5000 {
		t.Fatalf("EUR legs: from=%d to=%d", from.BalanceEURCents, to.BalanceEURCents)
	}
	if from.BalanceBGNCents != -9779 || to.BalanceBGNCents != 9779 {
		t.Fatalf("BGN legs: from=%d to=%d", from.BalanceBGNCents, to.BalanceBGNCents)
	}
}

func TestCreateTransferRejectsSameAccount(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.transfer.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		UserID:        "user-1",
		FromAccountID: "acc-a",
		ToAccountID:   "acc-a",
		Amount:        decimal.RequireFromString("10.00"),
		Currency:      domain.CurrencyBGN,
	})
	if !errors.Is(err, domain.ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
}

func TestCreateTransferRejectsBadAmountAndCurrency(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	_, err := f.transfer.CreateTransfer(ctx, usecase.CreateTransferInput{
		UserID:        "user-1",
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        decimal.Zero,
		Currency:      domain.CurrencyBGN,
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = f.transfer.CreateTransfer(ctx, usecase.CreateTransferInput{
		UserID:        "user-1",
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        decimal.RequireFromString("10.00"),
		Currency:      domain.Currency("usd"),
	})
	if !errors.Is(err, domain.ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestCreateTransferEnforcesOwnership(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.transfer.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		UserID:        "user-1",
		FromAccountID: "acc-a",
		ToAccountID:   "acc-z",
		Amount:        decimal.RequireFromString("10.00"),
		Currency:      domain.CurrencyBGN,
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if f.store.Accounts["acc-z"].BalanceBGNCents != 0 {
		t.Fatal("foreign account balance moved")
	}
}
