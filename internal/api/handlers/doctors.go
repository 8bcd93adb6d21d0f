package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/search"
)

// Searcher ranks doctors against symptom text.
type Searcher interface {
	Search(ctx context.Context, symptoms string) ([]search.Recommendation, error)
}

// DoctorHandler serves the symptom-based doctor search.
type DoctorHandler struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewDoctorHandler creates a new handler.
func NewDoctorHandler(searcher Searcher, logger *zap.Logger) *DoctorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DoctorHandler{searcher: searcher, logger: logger}
}

// Routes returns the handler routes.
func (h *DoctorHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/search", h.Search)
	return r
}

// Search handles GET /doctors/search?symptoms=. Descriptions shorter than
// the minimum are rejected so the matcher has something to work with.
func (h *DoctorHandler) Search(w http.ResponseWriter, r *http.Request) {
	symptoms := strings.TrimSpace(r.URL.Query().Get("symptoms"))
	if len(symptoms) < search.MinSymptomLength {
		jsonError(w, "please describe your symptoms in more detail", http.StatusBadRequest)
		return
	}

	recs, err := h.searcher.Search(r.Context(), symptoms)
	if err != nil {
		h.logger.Error("doctor search failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}
