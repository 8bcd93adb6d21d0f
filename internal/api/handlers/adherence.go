package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/domain/adherence"
	"github.com/aurasutra/patient-api/internal/observability/metrics"
)

// AdherenceService is the engine surface the handler needs.
type AdherenceService interface {
	RecordDose(ctx context.Context, adherenceID string, taken, skipped bool) (*adherence.Record, error)
	Stats(ctx context.Context, pid, prescriptionID string) (adherence.Stats, error)
	Pending(ctx context.Context, pid string, date time.Time) ([]adherence.Record, error)
	Trend(ctx context.Context, pid string, windowDays int) (adherence.TrendReport, error)
}

// AdherenceHandler serves the medication checklist and compliance endpoints.
type AdherenceHandler struct {
	svc     AdherenceService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAdherenceHandler creates a new handler.
func NewAdherenceHandler(svc AdherenceService, m *metrics.Metrics, logger *zap.Logger) *AdherenceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdherenceHandler{svc: svc, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *AdherenceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Pending)
	r.Patch("/", h.RecordDose)
	r.Get("/stats", h.Stats)
	r.Get("/trend", h.Trend)
	return r
}

// Pending handles GET /adherence?pid=&date= and returns the day's
// unrecorded doses, earliest first.
func (h *AdherenceHandler) Pending(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("pid")
	if pid == "" {
		jsonError(w, "pid is required", http.StatusBadRequest)
		return
	}

	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	records, err := h.svc.Pending(r.Context(), pid, date)
	if err != nil {
		h.serviceError(w, r, "list pending doses", err)
		return
	}
	if records == nil {
		records = []adherence.Record{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"date":    date.Format("2006-01-02"),
		"pending": records,
	})
}

// RecordDoseRequest is the body for PATCH /adherence.
type RecordDoseRequest struct {
	AdherenceID string `json:"adherence_id"`
	IsTaken     bool   `json:"is_taken"`
	IsSkipped   bool   `json:"is_skipped"`
}

// RecordDose handles PATCH /adherence, marking one dose taken or skipped.
func (h *AdherenceHandler) RecordDose(w http.ResponseWriter, r *http.Request) {
	var req RecordDoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AdherenceID == "" {
		jsonError(w, "adherence_id is required", http.StatusBadRequest)
		return
	}

	record, err := h.svc.RecordDose(r.Context(), req.AdherenceID, req.IsTaken, req.IsSkipped)
	if err != nil {
		if errors.Is(err, adherence.ErrNotFound) {
			jsonError(w, "adherence record not found", http.StatusNotFound)
			return
		}
		h.serviceError(w, r, "record dose", err)
		return
	}

	if h.metrics != nil {
		h.metrics.DosesRecorded.WithLabelValues(string(record.Status())).Inc()
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "record": record})
}

// Stats handles GET /adherence/stats?pid=&prescription_id=.
func (h *AdherenceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("pid")
	if pid == "" {
		jsonError(w, "pid is required", http.StatusBadRequest)
		return
	}

	stats, err := h.svc.Stats(r.Context(), pid, r.URL.Query().Get("prescription_id"))
	if err != nil {
		h.serviceError(w, r, "compute stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Trend handles GET /adherence/trend?pid=&days=.
func (h *AdherenceHandler) Trend(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("pid")
	if pid == "" {
		jsonError(w, "pid is required", http.StatusBadRequest)
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(w, "days must be an integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	report, err := h.svc.Trend(r.Context(), pid, days)
	if err != nil {
		var valErr *adherence.ValidationError
		if errors.As(err, &valErr) {
			jsonError(w, valErr.Error(), http.StatusBadRequest)
			return
		}
		h.serviceError(w, r, "compute trend", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *AdherenceHandler) serviceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))

	var depErr *adherence.DependencyError
	if errors.As(err, &depErr) {
		jsonError(w, "datastore unavailable", http.StatusServiceUnavailable)
		return
	}
	jsonError(w, "internal server error", http.StatusInternalServerError)
}
