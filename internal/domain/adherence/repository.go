package adherence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/infrastructure/postgres"
	"github.com/aurasutra/patient-api/internal/infrastructure/redpanda"
)

const recordColumns = `
	adherence_id, prescription_id, pid, medicine_name,
	scheduled_date, scheduled_time, is_taken, is_skipped,
	taken_at, skip_reason, created_at, updated_at
`

// Repository persists adherence records in Postgres. Mutations write a
// domain event to the transactional outbox in the same transaction.
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

// InsertBatch bulk-inserts a generated schedule in one transaction, so a
// failed batch leaves no partial schedule behind.
func (r *Repository) InsertBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO medication_adherence (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, rec := range records {
		_, err := tx.Exec(ctx, query,
			rec.AdherenceID, rec.PrescriptionID, rec.PatientID, rec.MedicineName,
			rec.ScheduledDate, rec.ScheduledTime, rec.IsTaken, rec.IsSkipped,
			rec.TakenAt, nullable(rec.SkipReason), rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert adherence record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID retrieves a single record.
func (r *Repository) GetByID(ctx context.Context, adherenceID string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM medication_adherence WHERE adherence_id = $1`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, adherenceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get adherence record: %w", err)
	}
	return rec, nil
}

// Update persists a record's outcome fields and emits a dose.recorded event
// through the outbox. Schedule fields are never updated after creation.
func (r *Repository) Update(ctx context.Context, rec *Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE medication_adherence
		SET is_taken = $1, is_skipped = $2, taken_at = $3, skip_reason = $4, updated_at = $5
		WHERE adherence_id = $6
	`
	result, err := tx.Exec(ctx, query,
		rec.IsTaken, rec.IsSkipped, rec.TakenAt, nullable(rec.SkipReason),
		rec.UpdatedAt, rec.AdherenceID,
	)
	if err != nil {
		return fmt.Errorf("update adherence record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	payload, err := json.Marshal(map[string]any{
		"adherence_id":    rec.AdherenceID,
		"prescription_id": rec.PrescriptionID,
		"pid":             rec.PatientID,
		"medicine_name":   rec.MedicineName,
		"status":          rec.Status(),
		"taken_at":        rec.TakenAt,
	})
	if err != nil {
		return fmt.Errorf("encode dose event: %w", err)
	}
	entry := &postgres.OutboxEntry{
		AggregateID:   rec.AdherenceID,
		AggregateType: "AdherenceRecord",
		EventType:     "DoseRecorded",
		Payload:       payload,
		Topic:         redpanda.TopicDoseRecorded,
		Key:           rec.PatientID,
	}
	if err := postgres.WriteEntry(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListByPatient retrieves the patient's records, optionally scoped to one
// prescription.
func (r *Repository) ListByPatient(ctx context.Context, pid, prescriptionID string) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM medication_adherence
		WHERE pid = $1
	`
	args := []any{pid}
	if prescriptionID != "" {
		query += ` AND prescription_id = $2`
		args = append(args, prescriptionID)
	}
	query += ` ORDER BY scheduled_date DESC`

	return r.list(ctx, query, args...)
}

// ListPendingOn retrieves unrecorded doses for one calendar date, ordered
// as the checklist requires.
func (r *Repository) ListPendingOn(ctx context.Context, pid string, date time.Time) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM medication_adherence
		WHERE pid = $1
		  AND scheduled_date = $2
		  AND is_taken = FALSE
		  AND is_skipped = FALSE
		ORDER BY scheduled_time ASC, medicine_name ASC
	`
	return r.list(ctx, query, pid, date)
}

// ListSince retrieves records scheduled on or after from.
func (r *Repository) ListSince(ctx context.Context, pid string, from time.Time) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM medication_adherence
		WHERE pid = $1 AND scheduled_date >= $2
		ORDER BY scheduled_date ASC
	`
	return r.list(ctx, query, pid, from)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query adherence records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan adherence record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec := &Record{}
	var skipReason *string
	err := row.Scan(
		&rec.AdherenceID, &rec.PrescriptionID, &rec.PatientID, &rec.MedicineName,
		&rec.ScheduledDate, &rec.ScheduledTime, &rec.IsTaken, &rec.IsSkipped,
		&rec.TakenAt, &skipReason, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if skipReason != nil {
		rec.SkipReason = *skipReason
	}
	return rec, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
