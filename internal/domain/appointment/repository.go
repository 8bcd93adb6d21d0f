package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/infrastructure/postgres"
	"github.com/aurasutra/patient-api/internal/infrastructure/redpanda"
)

const appointmentColumns = `
	aid, pid, did, mode, status, scheduled_date, scheduled_time,
	chief_complaint, symptoms, payment_id, payment_status,
	meeting_link, token_number, call_started_at, call_ended_at,
	created_at, updated_at
`

// Repository persists appointments in Postgres.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// DoctorExists verifies the doctor id before booking.
func (r *Repository) DoctorExists(ctx context.Context, did string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM doctors WHERE did = $1)`, did).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check doctor: %w", err)
	}
	return exists, nil
}

// DoctorName resolves a doctor id to the display name used in notifications.
func (r *Repository) DoctorName(ctx context.Context, did string) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `
		SELECT u.name FROM doctors d JOIN users u ON u.uid = d.uid WHERE d.did = $1
	`, did).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get doctor name: %w", err)
	}
	return name, nil
}

// Create books an appointment and writes the appointment.booked event to the
// outbox in the same transaction so the confirmation email cannot race the
// booking.
func (r *Repository) Create(ctx context.Context, booking *BookingRequest) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	paymentStatus := booking.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = "pending"
	}

	query := `
		INSERT INTO appointments
			(aid, pid, did, mode, status, scheduled_date, scheduled_time,
			 chief_complaint, symptoms, payment_id, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + appointmentColumns

	appt, err := scanAppointment(tx.QueryRow(ctx, query,
		uuid.New().String(), booking.PID, booking.DID, booking.Mode, StatusConfirmed,
		booking.ScheduledDate, booking.ScheduledTime, booking.ChiefComplaint,
		symptomsValue(booking.Symptoms), nullable(booking.PaymentID), paymentStatus,
	))
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"aid":             appt.AID,
		"pid":             appt.PID,
		"did":             appt.DID,
		"mode":            appt.Mode,
		"scheduled_date":  appt.ScheduledDate,
		"scheduled_time":  appt.ScheduledTime,
		"chief_complaint": appt.ChiefComplaint,
		"meeting_link":    appt.MeetingLink,
		"token_number":    appt.TokenNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("encode booking event: %w", err)
	}
	entry := &postgres.OutboxEntry{
		AggregateID:   appt.AID,
		AggregateType: "Appointment",
		EventType:     "AppointmentBooked",
		Payload:       payload,
		Topic:         redpanda.TopicAppointmentBooked,
		Key:           appt.PID,
	}
	if err := postgres.WriteEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	r.logger.Info("appointment booked",
		zap.String("aid", appt.AID),
		zap.String("pid", appt.PID),
		zap.String("did", appt.DID))
	return appt, nil
}

// GetByID retrieves one appointment.
func (r *Repository) GetByID(ctx context.Context, aid string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE aid = $1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, aid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// CallState is the slice of an appointment the in-call UI polls.
type CallState struct {
	Status        string     `json:"status"`
	CallStartedAt *time.Time `json:"call_started_at,omitempty"`
	CallEndedAt   *time.Time `json:"call_ended_at,omitempty"`
}

// GetCallState retrieves just the status and call timestamps.
func (r *Repository) GetCallState(ctx context.Context, aid string) (*CallState, error) {
	query := `SELECT status, call_started_at, call_ended_at FROM appointments WHERE aid = $1`

	state := &CallState{}
	err := r.pool.QueryRow(ctx, query, aid).Scan(&state.Status, &state.CallStartedAt, &state.CallEndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get call state: %w", err)
	}
	return state, nil
}

// UpdateStatus moves the appointment to a new lifecycle status, stamping the
// call window when the consultation starts or ends.
func (r *Repository) UpdateStatus(ctx context.Context, aid, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	query := `
		UPDATE appointments
		SET status = $1,
		    call_started_at = CASE WHEN $1 = 'in_progress' AND call_started_at IS NULL THEN NOW() ELSE call_started_at END,
		    call_ended_at   = CASE WHEN $1 = 'completed' AND call_ended_at IS NULL THEN NOW() ELSE call_ended_at END,
		    updated_at = NOW()
		WHERE aid = $2
		RETURNING ` + appointmentColumns

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, status, aid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	return appt, nil
}

// ListByPatient retrieves a patient's appointments, newest first.
func (r *Repository) ListByPatient(ctx context.Context, pid string) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE pid = $1
		ORDER BY scheduled_date DESC, scheduled_time DESC
	`

	rows, err := r.pool.Query(ctx, query, pid)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, *appt)
	}
	return appts, rows.Err()
}

// CountByPatient returns the patient's total appointment count for the
// dashboard summary.
func (r *Repository) CountByPatient(ctx context.Context, pid string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE pid = $1`, pid).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	appt := &Appointment{}
	var symptoms []byte
	var paymentID, meetingLink *string
	err := row.Scan(
		&appt.AID, &appt.PID, &appt.DID, &appt.Mode, &appt.Status,
		&appt.ScheduledDate, &appt.ScheduledTime, &appt.ChiefComplaint,
		&symptoms, &paymentID, &appt.PaymentStatus,
		&meetingLink, &appt.TokenNumber, &appt.CallStartedAt, &appt.CallEndedAt,
		&appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paymentID != nil {
		appt.PaymentID = *paymentID
	}
	if meetingLink != nil {
		appt.MeetingLink = *meetingLink
	}
	if len(symptoms) > 0 {
		if err := json.Unmarshal(symptoms, &appt.Symptoms); err != nil {
			return nil, fmt.Errorf("decode symptoms: %w", err)
		}
	}
	return appt, nil
}

func symptomsValue(symptoms []string) any {
	if len(symptoms) == 0 {
		return nil
	}
	b, _ := json.Marshal(symptoms)
	return b
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
