package adherence

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/domain/prescription"
)

// Store is the persistence contract for adherence records. The pgx-backed
// Repository is the production implementation; tests supply an in-memory one.
type Store interface {
	InsertBatch(ctx context.Context, records []Record) error
	GetByID(ctx context.Context, adherenceID string) (*Record, error)
	Update(ctx context.Context, record *Record) error
	ListByPatient(ctx context.Context, pid, prescriptionID string) ([]Record, error)
	ListPendingOn(ctx context.Context, pid string, date time.Time) ([]Record, error)
	ListSince(ctx context.Context, pid string, from time.Time) ([]Record, error)
}

// Service is the adherence engine: schedule generation, dose recording and
// compliance aggregation. It is stateless between calls; every operation
// reads from and writes to the store within the request.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the adherence service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// GenerateSchedule expands a sent prescription into dated dose records and
// bulk-inserts them. A prescription without medicines produces no records
// and is not an error. Callers must guarantee at-most-once invocation per
// prescription; the generator itself does not deduplicate.
func (s *Service) GenerateSchedule(ctx context.Context, p *prescription.Prescription) ([]Record, error) {
	records := ExpandSchedule(p, s.now())
	if len(records) == 0 {
		s.logger.Info("prescription has no medicines, no schedule generated",
			zap.String("prescription_id", p.PrescriptionID))
		return nil, nil
	}

	if err := s.store.InsertBatch(ctx, records); err != nil {
		return nil, &DependencyError{Op: "insert adherence schedule", Err: err}
	}

	s.logger.Info("adherence schedule generated",
		zap.String("prescription_id", p.PrescriptionID),
		zap.String("pid", p.PatientID),
		zap.Int("records", len(records)))
	return records, nil
}

// RecordDose applies a patient-reported outcome to a single dose and
// persists it. Marking one dose never affects sibling doses.
func (s *Service) RecordDose(ctx context.Context, adherenceID string, taken, skipped bool) (*Record, error) {
	record, err := s.store.GetByID(ctx, adherenceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &DependencyError{Op: "load adherence record", Err: err}
	}

	record.Apply(taken, skipped, s.now())

	if err := s.store.Update(ctx, record); err != nil {
		return nil, &DependencyError{Op: "update adherence record", Err: err}
	}

	s.logger.Debug("dose recorded",
		zap.String("adherence_id", adherenceID),
		zap.String("status", string(record.Status())))
	return record, nil
}

// Stats computes compliance statistics for a patient, optionally scoped to
// one prescription.
func (s *Service) Stats(ctx context.Context, pid, prescriptionID string) (Stats, error) {
	records, err := s.store.ListByPatient(ctx, pid, prescriptionID)
	if err != nil {
		return Stats{}, &DependencyError{Op: "list adherence records", Err: err}
	}
	return ComputeStats(records), nil
}

// Pending returns the patient's unrecorded doses for the given date,
// earliest dose first.
func (s *Service) Pending(ctx context.Context, pid string, date time.Time) ([]Record, error) {
	records, err := s.store.ListPendingOn(ctx, pid, date)
	if err != nil {
		return nil, &DependencyError{Op: "list pending doses", Err: err}
	}
	// Stores may return rows unordered; the checklist ordering is part of
	// the contract.
	return PendingOn(records, date), nil
}

// Trend computes the windowed day-by-day series and top-medicine shares.
func (s *Service) Trend(ctx context.Context, pid string, windowDays int) (TrendReport, error) {
	if windowDays <= 0 {
		return TrendReport{}, &ValidationError{Field: "windowDays", Reason: "must be positive"}
	}

	from := dateOf(s.now()).AddDate(0, 0, -(windowDays - 1))
	records, err := s.store.ListSince(ctx, pid, from)
	if err != nil {
		return TrendReport{}, &DependencyError{Op: "list adherence window", Err: err}
	}
	return ComputeTrend(records, windowDays, s.now())
}
