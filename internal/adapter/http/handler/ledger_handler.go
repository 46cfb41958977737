package handler

import (
	"net/http"
	"time"

	"github.com/velinov/fintrack/internal/adapter/http/dto"
	"github.com/velinov/fintrack/internal/infrastructure/metrics"
	"github.com/velinov/fintrack/internal/usecase"
)

// LedgerHandler exposes the sweep and audit maintenance operations.
type LedgerHandler struct {
	materializerUC *usecase.MaterializerUseCase
	auditUC        *usecase.AuditUseCase
	metrics        *metrics.Metrics
}

// NewLedgerHandler creates a new LedgerHandler. metrics may be nil in tests.
func NewLedgerHandler(materializerUC *usecase.MaterializerUseCase, auditUC *usecase.AuditUseCase, m *metrics.Metrics) *LedgerHandler {
	return &LedgerHandler{materializerUC: materializerUC, auditUC: auditUC, metrics: m}
}

// Sweep applies the caller's due fixed expenses.
func (h *LedgerHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	start := time.Now()
	applied, err := h.materializerUC.ApplyDueFixedExpenses(r.Context(), userID)
	if err != nil {
		if h.metrics != nil {
			h.metrics.LedgerErrors.WithLabelValues("sweep").Inc()
		}
		writeError(w, mapDomainError(err), "failed to apply due fixed expenses", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.SweepRuns.Inc()
		h.metrics.SweepApplied.Add(float64(applied))
		h.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{Applied: applied})
}

// Audit recomputes applied sums per account and reports drift against the
// stored balances. With ?backfill=true drifted accounts are rewritten.
func (h *LedgerHandler) Audit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	backfill := parseBoolQuery(r, "backfill")

	rows, err := h.auditUC.Audit(r.Context(), userID, backfill)
	if err != nil {
		if h.metrics != nil {
			h.metrics.LedgerErrors.WithLabelValues("audit").Inc()
		}
		writeError(w, mapDomainError(err), "failed to audit accounts", err.Error())
		return
	}

	resp := dto.AuditFromUseCase(rows)
	if h.metrics != nil {
		for _, row := range resp.Accounts {
			if !row.Consistent {
				h.metrics.AuditDriftsFound.Inc()
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
