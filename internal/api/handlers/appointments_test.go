package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aurasutra/patient-api/internal/api/middleware"
	"github.com/aurasutra/patient-api/internal/domain/appointment"
	"github.com/aurasutra/patient-api/internal/domain/patient"
)

type fakeAppointmentStore struct {
	doctorExists bool
	created      *appointment.Appointment
	byID         map[string]*appointment.Appointment
}

func (f *fakeAppointmentStore) DoctorExists(context.Context, string) (bool, error) {
	return f.doctorExists, nil
}

func (f *fakeAppointmentStore) Create(_ context.Context, booking *appointment.BookingRequest) (*appointment.Appointment, error) {
	f.created = &appointment.Appointment{
		AID:    "apt-1",
		PID:    booking.PID,
		DID:    booking.DID,
		Mode:   booking.Mode,
		Status: appointment.StatusConfirmed,
	}
	return f.created, nil
}

func (f *fakeAppointmentStore) GetByID(_ context.Context, aid string) (*appointment.Appointment, error) {
	if appt, ok := f.byID[aid]; ok {
		return appt, nil
	}
	return nil, appointment.ErrNotFound
}

func (f *fakeAppointmentStore) GetCallState(_ context.Context, aid string) (*appointment.CallState, error) {
	appt, ok := f.byID[aid]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	return &appointment.CallState{Status: appt.Status}, nil
}

func (f *fakeAppointmentStore) UpdateStatus(_ context.Context, aid, status string) (*appointment.Appointment, error) {
	appt, ok := f.byID[aid]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	appt.Status = status
	return appt, nil
}

type fakeIssuer struct{}

func (fakeIssuer) RoomToken(aid, userID string) (string, error) {
	return "token-" + aid + "-" + userID, nil
}

func bookingBody() string {
	body, _ := json.Marshal(map[string]any{
		"pid":             "pat-1",
		"did":             "doc-1",
		"scheduled_date":  "2026-09-01",
		"scheduled_time":  "10:30",
		"mode":            "online",
		"chief_complaint": "Persistent joint pain",
	})
	return string(body)
}

func TestBookAppointment(t *testing.T) {
	store := &fakeAppointmentStore{doctorExists: true}
	h := NewAppointmentHandler(store, fakeIssuer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(bookingBody()))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.created == nil || store.created.PID != "pat-1" {
		t.Errorf("booking did not reach the store: %+v", store.created)
	}
	if store.created.Status != appointment.StatusConfirmed {
		t.Errorf("expected confirmed booking, got %s", store.created.Status)
	}
}

func TestBookAppointmentUnknownDoctor(t *testing.T) {
	h := NewAppointmentHandler(&fakeAppointmentStore{doctorExists: false}, fakeIssuer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(bookingBody()))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBookAppointmentMissingFields(t *testing.T) {
	h := NewAppointmentHandler(&fakeAppointmentStore{doctorExists: true}, fakeIssuer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"pid":"pat-1","did":"doc-1"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCallTokenOnlineAppointment(t *testing.T) {
	store := &fakeAppointmentStore{byID: map[string]*appointment.Appointment{
		"apt-1": {AID: "apt-1", Mode: appointment.ModeOnline, Status: appointment.StatusConfirmed},
	}}
	h := NewAppointmentHandler(store, fakeIssuer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/apt-1/call-token", nil)
	ctx := context.WithValue(req.Context(), middleware.IdentityKey, &patient.Identity{ID: "auth-1"})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] != "token-apt-1-auth-1" {
		t.Errorf("unexpected token %q", resp["token"])
	}
	if resp["room_id"] != "appointment_apt-1" {
		t.Errorf("unexpected room id %q", resp["room_id"])
	}
}

func TestCallTokenOfflineAppointmentRejected(t *testing.T) {
	store := &fakeAppointmentStore{byID: map[string]*appointment.Appointment{
		"apt-2": {AID: "apt-2", Mode: appointment.ModeOffline},
	}}
	h := NewAppointmentHandler(store, fakeIssuer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/apt-2/call-token", nil)
	ctx := context.WithValue(req.Context(), middleware.IdentityKey, &patient.Identity{ID: "auth-1"})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCallTokenRequiresIdentity(t *testing.T) {
	h := NewAppointmentHandler(&fakeAppointmentStore{}, fakeIssuer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/apt-1/call-token", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	store := &fakeAppointmentStore{byID: map[string]*appointment.Appointment{
		"apt-1": {AID: "apt-1", Status: appointment.StatusConfirmed},
	}}
	h := NewAppointmentHandler(store, fakeIssuer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPatch, "/apt-1/status", strings.NewReader(`{"status":"in_progress"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.byID["apt-1"].Status != appointment.StatusInProgress {
		t.Errorf("expected in_progress, got %s", store.byID["apt-1"].Status)
	}
}

func TestUpdateAppointmentStatusInvalid(t *testing.T) {
	h := NewAppointmentHandler(&fakeAppointmentStore{}, fakeIssuer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPatch, "/apt-1/status", strings.NewReader(`{"status":"teleported"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
