package prescription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/infrastructure/postgres"
	"github.com/aurasutra/patient-api/internal/infrastructure/redpanda"
)

const selectColumns = `
	prescription_id, aid, pid, did, diagnosis, symptoms, medicines,
	instructions, diet_advice, follow_up_date, is_active,
	sent_to_patient, sent_at, created_at, updated_at
`

// Repository persists prescriptions in Postgres.
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

// GetByID retrieves a single prescription.
func (r *Repository) GetByID(ctx context.Context, id string) (*Prescription, error) {
	query := `SELECT ` + selectColumns + ` FROM prescriptions WHERE prescription_id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanPrescription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	return p, nil
}

// ListByPatient retrieves the patient's active prescriptions, newest first.
func (r *Repository) ListByPatient(ctx context.Context, pid string) ([]*Prescription, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM prescriptions
		WHERE pid = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, pid)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSent applies the one-way draft-to-sent transition and writes the
// prescription.sent event to the outbox in the same transaction. It fails
// with ErrAlreadySent if the prescription was sent before, so callers can
// guarantee at-most-once schedule generation.
func (r *Repository) MarkSent(ctx context.Context, id string) (*Prescription, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE prescriptions
		SET sent_to_patient = TRUE, sent_at = NOW(), updated_at = NOW()
		WHERE prescription_id = $1 AND sent_to_patient = FALSE
		RETURNING ` + selectColumns

	p, err := scanPrescription(tx.QueryRow(ctx, query, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("mark sent: %w", err)
		}
		// No row updated: either missing or already sent.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadySent
	}

	payload, err := json.Marshal(map[string]any{
		"prescription_id": p.PrescriptionID,
		"pid":             p.PatientID,
		"did":             p.DoctorID,
		"diagnosis":       p.Diagnosis,
		"medicines":       p.Medicines,
		"instructions":    p.Instructions,
	})
	if err != nil {
		return nil, fmt.Errorf("encode sent event: %w", err)
	}
	entry := &postgres.OutboxEntry{
		AggregateID:   p.PrescriptionID,
		AggregateType: "Prescription",
		EventType:     "PrescriptionSent",
		Payload:       payload,
		Topic:         redpanda.TopicPrescriptionSent,
		Key:           p.PatientID,
	}
	if err := postgres.WriteEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrescription(row rowScanner) (*Prescription, error) {
	p := &Prescription{}
	var medicines []byte
	err := row.Scan(
		&p.PrescriptionID, &p.AppointmentID, &p.PatientID, &p.DoctorID,
		&p.Diagnosis, &p.Symptoms, &medicines,
		&p.Instructions, &p.DietAdvice, &p.FollowUpDate, &p.IsActive,
		&p.SentToPatient, &p.SentAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(medicines) > 0 {
		if err := json.Unmarshal(medicines, &p.Medicines); err != nil {
			return nil, fmt.Errorf("decode medicines: %w", err)
		}
	}
	return p, nil
}
