package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/api/middleware"
	"github.com/aurasutra/patient-api/internal/domain/appointment"
	"github.com/aurasutra/patient-api/internal/gateway/video"
	"github.com/aurasutra/patient-api/internal/observability/metrics"
)

// AppointmentStore is the repository surface the handler needs.
type AppointmentStore interface {
	DoctorExists(ctx context.Context, did string) (bool, error)
	Create(ctx context.Context, booking *appointment.BookingRequest) (*appointment.Appointment, error)
	GetByID(ctx context.Context, aid string) (*appointment.Appointment, error)
	GetCallState(ctx context.Context, aid string) (*appointment.CallState, error)
	UpdateStatus(ctx context.Context, aid, status string) (*appointment.Appointment, error)
}

// TokenIssuer signs video room join tokens.
type TokenIssuer interface {
	RoomToken(aid, userID string) (string, error)
}

// AppointmentHandler serves booking and the consultation call lifecycle.
type AppointmentHandler struct {
	store   AppointmentStore
	issuer  TokenIssuer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAppointmentHandler creates a new handler.
func NewAppointmentHandler(store AppointmentStore, issuer TokenIssuer, m *metrics.Metrics, logger *zap.Logger) *AppointmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentHandler{store: store, issuer: issuer, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *AppointmentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Book)
	r.Get("/{aid}", h.Get)
	r.Get("/{aid}/status", h.CallStatus)
	r.Patch("/{aid}/status", h.UpdateStatus)
	r.Post("/{aid}/call-token", h.CallToken)
	return r
}

// BookRequest is the body for POST /appointments.
type BookRequest struct {
	PID string `json:"pid"`
	appointment.BookingRequest
}

// Book handles POST /appointments. The doctor must exist and the booking
// fields must be complete; payment is captured before this call, so the
// appointment is created already confirmed.
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PID == "" {
		jsonError(w, "pid is required", http.StatusBadRequest)
		return
	}
	req.BookingRequest.PID = req.PID

	if err := req.BookingRequest.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := h.store.DoctorExists(r.Context(), req.DID)
	if err != nil {
		h.logger.Error("doctor lookup failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !exists {
		jsonError(w, "doctor not found", http.StatusNotFound)
		return
	}

	appt, err := h.store.Create(r.Context(), &req.BookingRequest)
	if err != nil {
		h.logger.Error("booking failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if h.metrics != nil {
		h.metrics.AppointmentsBooked.Inc()
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "appointment": appt})
}

// Get handles GET /appointments/{aid}.
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.store.GetByID(r.Context(), chi.URLParam(r, "aid"))
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			jsonError(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("get appointment failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, appt)
}

// CallStatus handles GET /appointments/{aid}/status. The in-call UI polls
// this to learn when the consultation starts and ends.
func (h *AppointmentHandler) CallStatus(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.GetCallState(r.Context(), chi.URLParam(r, "aid"))
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			jsonError(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("get call state failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// UpdateStatusRequest is the body for PATCH /appointments/{aid}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /appointments/{aid}/status, moving the
// appointment through its lifecycle and stamping the call window.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !appointment.ValidStatus(req.Status) {
		jsonError(w, "invalid status", http.StatusBadRequest)
		return
	}

	appt, err := h.store.UpdateStatus(r.Context(), chi.URLParam(r, "aid"), req.Status)
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			jsonError(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("update status failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "appointment": appt})
}

// CallToken handles POST /appointments/{aid}/call-token, issuing a signed
// join token for the appointment's video room. Only online appointments have
// a room.
func (h *AppointmentHandler) CallToken(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		jsonError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	aid := chi.URLParam(r, "aid")
	appt, err := h.store.GetByID(r.Context(), aid)
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			jsonError(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("get appointment failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if appt.Mode != appointment.ModeOnline {
		jsonError(w, "appointment is not an online consultation", http.StatusBadRequest)
		return
	}

	token, err := h.issuer.RoomToken(aid, identity.ID)
	if err != nil {
		h.logger.Error("sign room token failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"token":   token,
		"room_id": video.RoomID(aid),
	})
}
