package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/domain/adherence"
	"github.com/aurasutra/patient-api/internal/domain/prescription"
	"github.com/aurasutra/patient-api/internal/observability/metrics"
	"github.com/aurasutra/patient-api/pkg/idempotency"
)

// PrescriptionStore is the repository surface the handler needs.
type PrescriptionStore interface {
	ListByPatient(ctx context.Context, pid string) ([]*prescription.Prescription, error)
	MarkSent(ctx context.Context, id string) (*prescription.Prescription, error)
}

// ScheduleGenerator expands a sent prescription into dose records.
type ScheduleGenerator interface {
	GenerateSchedule(ctx context.Context, p *prescription.Prescription) ([]adherence.Record, error)
}

// GenerationGuard provides the at-most-once guarantee around schedule
// generation.
type GenerationGuard interface {
	Process(ctx context.Context, key, handlerName string, payload json.RawMessage, fn idempotency.ProcessFunc) (*idempotency.ProcessResult, error)
}

// PrescriptionHandler serves prescription listing and the send transition.
type PrescriptionHandler struct {
	store     PrescriptionStore
	generator ScheduleGenerator
	guard     GenerationGuard
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewPrescriptionHandler creates a new handler.
func NewPrescriptionHandler(store PrescriptionStore, generator ScheduleGenerator, guard GenerationGuard, m *metrics.Metrics, logger *zap.Logger) *PrescriptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrescriptionHandler{store: store, generator: generator, guard: guard, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *PrescriptionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/{id}/send", h.Send)
	return r
}

// List handles GET /prescriptions?pid= and splits the patient's active
// prescriptions into sent and drafts, the way the portal renders them.
func (h *PrescriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("pid")
	if pid == "" {
		jsonError(w, "pid is required", http.StatusBadRequest)
		return
	}

	prescriptions, err := h.store.ListByPatient(r.Context(), pid)
	if err != nil {
		h.logger.Error("list prescriptions failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sent := []*prescription.Prescription{}
	drafts := []*prescription.Prescription{}
	for _, p := range prescriptions {
		if p.SentToPatient {
			sent = append(sent, p)
		} else {
			drafts = append(drafts, p)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"sent": sent, "drafts": drafts})
}

// SendResponse is the response for the send transition.
type SendResponse struct {
	PrescriptionID   string `json:"prescription_id"`
	ScheduleRecords  int    `json:"schedule_records"`
	AlreadyGenerated bool   `json:"already_generated,omitempty"`
}

// Send handles POST /prescriptions/{id}/send: the one-way draft-to-sent
// transition followed by adherence schedule generation. The idempotency
// guard makes a re-sent prescription return the original result instead of
// producing duplicate dose records.
func (h *PrescriptionHandler) Send(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.store.MarkSent(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, prescription.ErrNotFound):
			jsonError(w, "prescription not found", http.StatusNotFound)
		case errors.Is(err, prescription.ErrAlreadySent):
			jsonError(w, "prescription already sent", http.StatusConflict)
		default:
			h.logger.Error("mark sent failed", zap.Error(err))
			jsonError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	key := idempotency.ScheduleKey(p.PatientID, p.PrescriptionID)
	payload, _ := json.Marshal(map[string]string{"prescription_id": p.PrescriptionID, "pid": p.PatientID})

	result, err := h.guard.Process(r.Context(), key, "schedule-generator", payload,
		func(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
			records, err := h.generator.GenerateSchedule(ctx, p)
			if err != nil {
				return nil, err
			}
			if h.metrics != nil {
				h.metrics.SchedulesGenerated.Inc()
				h.metrics.ScheduleRecords.Observe(float64(len(records)))
			}
			return json.Marshal(map[string]int{"records": len(records)})
		})
	if err != nil {
		h.logger.Error("schedule generation failed",
			zap.String("prescription_id", p.PrescriptionID),
			zap.Error(err))
		jsonError(w, "schedule generation failed", http.StatusServiceUnavailable)
		return
	}

	var counts struct {
		Records int `json:"records"`
	}
	if len(result.Result) > 0 {
		_ = json.Unmarshal(result.Result, &counts)
	}

	respondJSON(w, http.StatusOK, SendResponse{
		PrescriptionID:   p.PrescriptionID,
		ScheduleRecords:  counts.Records,
		AlreadyGenerated: !result.IsNew && !result.WasRecovered,
	})
}
