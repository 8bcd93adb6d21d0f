package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/api/middleware"
	"github.com/aurasutra/patient-api/internal/domain/adherence"
	"github.com/aurasutra/patient-api/internal/domain/patient"
	"github.com/aurasutra/patient-api/internal/domain/prescription"
)

// Syncer upserts portal accounts from the session identity.
type Syncer interface {
	Sync(ctx context.Context, identity patient.Identity) (*patient.SyncResult, error)
	ResolvePID(ctx context.Context, authID string) (string, error)
}

// AppointmentCounter supplies the dashboard appointment count.
type AppointmentCounter interface {
	CountByPatient(ctx context.Context, pid string) (int, error)
}

// PrescriptionLister supplies the dashboard prescription summary.
type PrescriptionLister interface {
	ListByPatient(ctx context.Context, pid string) ([]*prescription.Prescription, error)
}

// ComplianceReader supplies the dashboard adherence summary.
type ComplianceReader interface {
	Stats(ctx context.Context, pid, prescriptionID string) (adherence.Stats, error)
	Trend(ctx context.Context, pid string, windowDays int) (adherence.TrendReport, error)
	Pending(ctx context.Context, pid string, date time.Time) ([]adherence.Record, error)
}

// PatientHandler serves identity sync and the dashboard summary.
type PatientHandler struct {
	syncer        Syncer
	appointments  AppointmentCounter
	prescriptions PrescriptionLister
	compliance    ComplianceReader
	logger        *zap.Logger
}

// NewPatientHandler creates a new handler.
func NewPatientHandler(syncer Syncer, appointments AppointmentCounter, prescriptions PrescriptionLister, compliance ComplianceReader, logger *zap.Logger) *PatientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientHandler{
		syncer:        syncer,
		appointments:  appointments,
		prescriptions: prescriptions,
		compliance:    compliance,
		logger:        logger,
	}
}

// Routes returns the handler routes.
func (h *PatientHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.Me)
	r.Get("/dashboard", h.Dashboard)
	return r
}

// Me handles GET /patients/me: syncs the session identity into the portal
// account tables and returns the account. First login provisions the user
// and patient profile.
func (h *PatientHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		jsonError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	result, err := h.syncer.Sync(r.Context(), *identity)
	if err != nil {
		h.logger.Error("identity sync failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if result.IsNew {
		status = http.StatusCreated
	}
	respondJSON(w, status, result)
}

// DashboardResponse is the home screen summary.
type DashboardResponse struct {
	PID                 string                `json:"pid"`
	AppointmentCount    int                   `json:"appointment_count"`
	ActivePrescriptions int                   `json:"active_prescriptions"`
	PendingDosesToday   int                   `json:"pending_doses_today"`
	Adherence           adherence.Stats       `json:"adherence"`
	Trend               adherence.TrendReport `json:"trend"`
}

// Dashboard handles GET /patients/dashboard, aggregating the counts and
// compliance summary the home screen renders.
func (h *PatientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		jsonError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	pid, err := h.syncer.ResolvePID(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			jsonError(w, "patient profile not found", http.StatusNotFound)
			return
		}
		h.logger.Error("resolve pid failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := DashboardResponse{PID: pid}

	if resp.AppointmentCount, err = h.appointments.CountByPatient(r.Context(), pid); err != nil {
		h.logger.Error("count appointments failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	prescriptions, err := h.prescriptions.ListByPatient(r.Context(), pid)
	if err != nil {
		h.logger.Error("list prescriptions failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	for _, p := range prescriptions {
		if p.SentToPatient {
			resp.ActivePrescriptions++
		}
	}

	if resp.Adherence, err = h.compliance.Stats(r.Context(), pid, ""); err != nil {
		h.logger.Error("compute stats failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if resp.Trend, err = h.compliance.Trend(r.Context(), pid, 7); err != nil {
		h.logger.Error("compute trend failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pending, err := h.compliance.Pending(r.Context(), pid, time.Now())
	if err != nil {
		h.logger.Error("list pending doses failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	resp.PendingDosesToday = len(pending)

	respondJSON(w, http.StatusOK, resp)
}
