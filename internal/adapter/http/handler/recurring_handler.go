package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velinov/fintrack/internal/adapter/http/dto"
	"github.com/velinov/fintrack/internal/infrastructure/metrics"
	"github.com/velinov/fintrack/internal/usecase"
)

// RecurringHandler handles recurring-template HTTP requests.
type RecurringHandler struct {
	recurringUC *usecase.RecurringUseCase
	metrics     *metrics.Metrics
}

// NewRecurringHandler creates a new RecurringHandler. metrics may be nil in
// tests.
func NewRecurringHandler(recurringUC *usecase.RecurringUseCase, m *metrics.Metrics) *RecurringHandler {
	return &RecurringHandler{recurringUC: recurringUC, metrics: m}
}

// Create creates a new recurring template.
func (h *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.RecurringTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tpl := req.ToDomain(userID)
	if err := h.recurringUC.CreateTemplate(r.Context(), tpl); err != nil {
		writeError(w, mapDomainError(err), "failed to create template", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TemplateFromDomain(tpl))
}

// Update edits a recurring template.
func (h *RecurringHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing template ID", "")
		return
	}

	var req dto.RecurringTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tpl := req.ToDomain(userID)
	tpl.ID = id
	if err := h.recurringUC.UpdateTemplate(r.Context(), tpl); err != nil {
		writeError(w, mapDomainError(err), "failed to update template", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TemplateFromDomain(tpl))
}

// Delete removes a recurring template.
func (h *RecurringHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing template ID", "")
		return
	}

	if err := h.recurringUC.DeleteTemplate(r.Context(), userID, id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete template", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists all of the caller's templates.
func (h *RecurringHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	templates, err := h.recurringUC.ListTemplates(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TemplatesFromDomain(templates))
}

// Upcoming lists active templates due within the next week, marking each
// occurrence paid when a matching transaction already exists. Overdue
// occurrences are posted first so the paid flags are current.
func (h *RecurringHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	posted, err := h.recurringUC.PostDue(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post due templates", err.Error())
		return
	}
	if h.metrics != nil && posted > 0 {
		h.metrics.RecurringPosted.Add(float64(posted))
	}

	payments, err := h.recurringUC.Upcoming(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list upcoming payments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.UpcomingFromUseCase(payments))
}

// PostDue posts every unposted due occurrence of the caller's active
// templates as a fixed transaction.
func (h *RecurringHandler) PostDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	posted, err := h.recurringUC.PostDue(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post due templates", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.RecurringPosted.Add(float64(posted))
	}

	writeJSON(w, http.StatusOK, dto.PostDueResponse{Posted: posted})
}
