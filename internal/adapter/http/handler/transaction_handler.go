package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velinov/fintrack/internal/adapter/http/dto"
	"github.com/velinov/fintrack/internal/domain"
	"github.com/velinov/fintrack/internal/infrastructure/metrics"
	"github.com/velinov/fintrack/internal/usecase"
)

// TransactionHandler handles ledger-entry HTTP requests.
type TransactionHandler struct {
	ledgerUC       *usecase.LedgerUseCase
	materializerUC *usecase.MaterializerUseCase
	metrics        *metrics.Metrics
}

// NewTransactionHandler creates a new TransactionHandler. metrics may be
// nil in tests.
func NewTransactionHandler(ledgerUC *usecase.LedgerUseCase, materializerUC *usecase.MaterializerUseCase, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC, materializerUC: materializerUC, metrics: m}
}

// Create creates a new ledger entry.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.ledgerUC.Create(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		if h.metrics != nil {
			h.metrics.LedgerErrors.WithLabelValues("create").Inc()
		}
		writeError(w, mapDomainError(err), "failed to create transaction", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.TransactionsCreated.WithLabelValues(string(tx.Type), string(tx.SourceType)).Inc()
		if tx.IsBalanceApplied {
			h.metrics.BalanceDeltasPosted.Inc()
		}
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Get retrieves a ledger entry by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	tx, err := h.ledgerUC.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// List lists the caller's ledger entries, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	// Due fixed expenses materialize before the read so listed rows and
	// balances agree.
	if _, err := h.materializerUC.ApplyDueFixedExpenses(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to apply due fixed expenses", err.Error())
		return
	}

	transactions, err := h.ledgerUC.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}

// Update edits a ledger entry and reconciles affected balances.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.ledgerUC.Update(r.Context(), userID, id, req.ToUseCaseInput())
	if err != nil {
		if h.metrics != nil {
			h.metrics.LedgerErrors.WithLabelValues("update").Inc()
		}
		writeError(w, mapDomainError(err), "failed to update transaction", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.TransactionsEdited.Inc()
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Delete removes a ledger entry, reversing its applied balance effect.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	// Deleting a row that is already gone is not an error for the caller.
	if err := h.ledgerUC.Delete(r.Context(), userID, id); err != nil && !errors.Is(err, domain.ErrTransactionNotFound) {
		if h.metrics != nil {
			h.metrics.LedgerErrors.WithLabelValues("delete").Inc()
		}
		writeError(w, mapDomainError(err), "failed to delete transaction", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.TransactionsDeleted.Inc()
	}

	w.WriteHeader(http.StatusNoContent)
}

// History lists the pre-edit snapshots of a ledger entry.
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	rows, err := h.ledgerUC.History(r.Context(), userID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromDomain(rows))
}
