package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/velinov/fintrack/internal/adapter/http/dto"
	"github.com/velinov/fintrack/internal/adapter/http/middleware"
	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/usecase"
	"github.com/velinov/fintrack/internal/usecase/mocks"
)

type transactionHandlerFixture struct {
	store  *mocks.Store
	router chi.Router
}

func newTransactionHandlerFixture(t *testing.T) *transactionHandlerFixture {
	t.Helper()

	store := mocks.NewStore()
	store.AddAccount(&domain.Account{ID: "acc-a", UserID: "user-1", Name: "cash", Kind: domain.AccountKindCash})

	ledger := usecase.NewLedgerUseCase(
		mocks.NewTxManager(store),
		mocks.NewAccountRepository(store),
		mocks.NewTransactionRepository(store),
		mocks.NewHistoryRepository(store),
		mocks.NewIDGenerator(),
	)

	materializer := usecase.NewMaterializerUseCase(
		mocks.NewTxManager(store),
		mocks.NewAccountRepository(store),
		mocks.NewTransactionRepository(store),
	)

	h := NewTransactionHandler(ledger, materializer, nil)
	router := chi.NewRouter()
	router.Post("/transactions", h.Create)
	router.Get("/transactions", h.List)
	router.Get("/transactions/{id}", h.Get)
	router.Put("/transactions/{id}", h.Update)
	router.Delete("/transactions/{id}", h.Delete)
	router.Get("/transactions/{id}/history", h.History)

	return &transactionHandlerFixture{store: store, router: router}
}

// authedRequest builds a request carrying an authenticated user ID, the way
// the auth middleware would.
func authedRequest(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestTransactionHandlerCreate(t *testing.T) {
	f := newTransactionHandlerFixture(t)

	body := `{"account_id":"acc-a","type":"expense","merchant_name":"Billa","category":"groceries","amount":"30.00","currency":"BGN"}`
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/transactions", body, "user-1"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TransactionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalBGNCents != 3000 || resp.TotalEURCents != 1534 {
		t.Fatalf("unexpected totals: %d BGN / %d EUR cents", resp.TotalBGNCents, resp.TotalEURCents)
	}
	if !resp.IsBalanceApplied {
		t.Fatal("undated manual expense must apply immediately")
	}

	acc := f.store.Accounts["acc-a"]
	if acc.BalanceBGNCents != -3000 || acc.BalanceEURCents != -1534 {
		t.Fatalf("balance not debited: %d BGN / %d EUR cents", acc.BalanceBGNCents, acc.BalanceEURCents)
	}
}

func TestTransactionHandlerCreateRejectsBadBody(t *testing.T) {
	f := newTransactionHandlerFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/transactions", "{not json", "user-1"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestTransactionHandlerCreateUnknownAccount(t *testing.T) {
	f := newTransactionHandlerFixture(t)

	body := `{"account_id":"acc-missing","type":"expense","merchant_name":"Billa","category":"groceries","amount":"30.00","currency":"BGN"}`
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/transactions", body, "user-1"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestTransactionHandlerRequiresUser(t *testing.T) {
	f := newTransactionHandlerFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestTransactionHandlerDeleteRestoresBalance(t *testing.T) {
	f := newTransactionHandlerFixture(t)

	body := `{"account_id":"acc-a","type":"expense","merchant_name":"Billa","category":"groceries","amount":"30.00","currency":"BGN"}`
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/transactions", body, "user-1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}
	var created dto.TransactionResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/transactions/"+created.ID, "", "user-1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	acc := f.store.Accounts["acc-a"]
	if acc.BalanceBGNCents != 0 || acc.BalanceEURCents != 0 {
		t.Fatalf("balance not restored: %d BGN / %d EUR cents", acc.BalanceBGNCents, acc.BalanceEURCents)
	}
}

func TestTransactionHandlerDeleteMissingRowIsOK(t *testing.T) {
	f := newTransactionHandlerFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/transactions/tx-gone", "", "user-1"))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("deleting an absent row must still report success, got %d", rec.Code)
	}
}

func TestTransactionHandlerGetScopedToOwner(t *testing.T) {
	f := newTransactionHandlerFixture(t)

	body := `{"account_id":"acc-a","type":"expense","merchant_name":"Billa","category":"groceries","amount":"30.00","currency":"BGN"}`
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/transactions", body, "user-1"))
	var created dto.TransactionResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodGet, "/transactions/"+created.ID, "", "user-2"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected another user's row to read as 404, got %d", rec.Code)
	}
}
