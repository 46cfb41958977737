package handler

import (
	"encoding/json"
	"net/http"

	"github.com/velinov/fintrack/internal/adapter/http/dto"
	"github.com/velinov/fintrack/internal/infrastructure/metrics"
	"github.com/velinov/fintrack/internal/usecase"
)

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC *usecase.TransferUseCase
	metrics    *metrics.Metrics
}

// NewTransferHandler creates a new TransferHandler. metrics may be nil in
// tests.
func NewTransferHandler(transferUC *usecase.TransferUseCase, m *metrics.Metrics) *TransferHandler {
	return &TransferHandler{transferUC: transferUC, metrics: m}
}

// Create moves money between two of the caller's accounts.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.transferUC.CreateTransfer(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		if h.metrics != nil {
			h.metrics.LedgerErrors.WithLabelValues("transfer").Inc()
		}
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())
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
