package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/velinov/fintrack/internal/adapter/http/dto"
	"github.com/velinov/fintrack/internal/infrastructure/metrics"
	"github.com/velinov/fintrack/internal/usecase"
)

// maxReceiptSize caps uploaded receipt images at 10 MiB.
const maxReceiptSize = 10 << 20

// ExtractionHandler handles receipt-upload HTTP requests. The use case is
// nil when extraction is not configured, in which case uploads are refused.
type ExtractionHandler struct {
	extractionUC *usecase.ExtractionUseCase
	metrics      *metrics.Metrics
}

// NewExtractionHandler creates a new ExtractionHandler. metrics may be nil
// in tests.
func NewExtractionHandler(extractionUC *usecase.ExtractionUseCase, m *metrics.Metrics) *ExtractionHandler {
	return &ExtractionHandler{extractionUC: extractionUC, metrics: m}
}

// Extract accepts a multipart receipt image, runs model extraction, and
// creates the resulting expense in one step.
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if h.extractionUC == nil {
		writeError(w, http.StatusServiceUnavailable, "receipt extraction disabled", "no extraction backend configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	accountID := r.FormValue("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account_id", "")
		return
	}
	isFixed := r.FormValue("is_fixed") == "true"

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file", err.Error())
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image", err.Error())
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	start := time.Now()
	tx, err := h.extractionUC.ExtractAndCreate(r.Context(), userID, accountID, isFixed, image, mimeType)
	if h.metrics != nil {
		h.metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "failed"
		}
		h.metrics.ExtractionsTotal.WithLabelValues(status).Inc()
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to extract receipt", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}
