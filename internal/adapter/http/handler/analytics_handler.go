package handler

import (
	"net/http"
	"time"

	"github.com/velinov/fintrack/internal/usecase"
)

// AnalyticsHandler handles reporting HTTP requests.
type AnalyticsHandler struct {
	analyticsUC *usecase.AnalyticsUseCase
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsUC *usecase.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsUC: analyticsUC}
}

// Categories returns the caller's per-category totals for a month.
// Defaults to the current month when year/month are absent.
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	year := parseIntQuery(r, "year", now.Year())
	month := parseIntQuery(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month", "month must be between 1 and 12")
		return
	}

	totals, err := h.analyticsUC.CategorySummary(r.Context(), userID, year, time.Month(month))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to summarize categories", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, totals)
}
