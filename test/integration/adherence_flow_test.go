// Package integration exercises the prescription-to-adherence flow end to
// end against an in-memory store.
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aurasutra/patient-api/internal/domain/adherence"
	"github.com/aurasutra/patient-api/internal/domain/prescription"
)

// memStore is an in-memory adherence.Store.
type memStore struct {
	mu      sync.Mutex
	records map[string]adherence.Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]adherence.Record)}
}

func (s *memStore) InsertBatch(_ context.Context, records []adherence.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.AdherenceID] = r
	}
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*adherence.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, adherence.ErrNotFound
	}
	return &r, nil
}

func (s *memStore) Update(_ context.Context, record *adherence.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.AdherenceID]; !ok {
		return adherence.ErrNotFound
	}
	s.records[record.AdherenceID] = *record
	return nil
}

func (s *memStore) ListByPatient(_ context.Context, pid, prescriptionID string) ([]adherence.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []adherence.Record
	for _, r := range s.records {
		if r.PatientID != pid {
			continue
		}
		if prescriptionID != "" && r.PrescriptionID != prescriptionID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *memStore) ListPendingOn(_ context.Context, pid string, _ time.Time) ([]adherence.Record, error) {
	return s.ListByPatient(context.Background(), pid, "")
}

func (s *memStore) ListSince(_ context.Context, pid string, from time.Time) ([]adherence.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []adherence.Record
	for _, r := range s.records {
		if r.PatientID == pid && !r.ScheduledDate.Before(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

// TestPrescriptionToComplianceFlow walks a five day course from schedule
// generation through one recorded dose to the aggregated stats.
func TestPrescriptionToComplianceFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := adherence.NewService(store, nil)

	p := &prescription.Prescription{
		PrescriptionID: "rx-flow-1",
		PatientID:      "pat-flow-1",
		DoctorID:       "doc-1",
		Diagnosis:      "General debility",
		Medicines: []prescription.Medicine{
			{Name: "Ashwagandha Churna", Dosage: "1 tsp", Frequency: "Once daily", Duration: "5 days"},
		},
		IsActive:      true,
		SentToPatient: true,
	}

	records, err := svc.GenerateSchedule(ctx, p)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 dose records for a 5 day once-daily course, got %d", len(records))
	}
	for _, r := range records {
		if r.Status() != adherence.DosePending {
			t.Errorf("new record %s should be pending, got %s", r.AdherenceID, r.Status())
		}
		if r.ScheduledTime != "09:00" {
			t.Errorf("once daily dose should be at 09:00, got %s", r.ScheduledTime)
		}
	}

	updated, err := svc.RecordDose(ctx, records[0].AdherenceID, true, false)
	if err != nil {
		t.Fatalf("RecordDose: %v", err)
	}
	if updated.Status() != adherence.DoseTaken {
		t.Fatalf("expected taken, got %s", updated.Status())
	}
	if updated.TakenAt == nil {
		t.Fatal("expected taken_at to be stamped")
	}

	stats, err := svc.Stats(ctx, "pat-flow-1", "")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 5 || stats.Taken != 1 || stats.Skipped != 0 || stats.Pending != 4 {
		t.Errorf("expected 5/1/0/4, got %d/%d/%d/%d",
			stats.Total, stats.Taken, stats.Skipped, stats.Pending)
	}
	if stats.AdherenceRate != 20 {
		t.Errorf("expected adherence rate 20, got %d", stats.AdherenceRate)
	}
	if len(stats.Breakdown) != 1 || stats.Breakdown[0].MedicineName != "Ashwagandha Churna" {
		t.Errorf("unexpected breakdown: %+v", stats.Breakdown)
	}
}

// TestDoseCorrectionFlow verifies a patient can flip a skipped dose to taken
// without touching its siblings.
func TestDoseCorrectionFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := adherence.NewService(store, nil)

	p := &prescription.Prescription{
		PrescriptionID: "rx-flow-2",
		PatientID:      "pat-flow-2",
		Medicines: []prescription.Medicine{
			{Name: "Triphala", Dosage: "2 tablets", Frequency: "Twice daily", Duration: "1 week"},
		},
	}

	records, err := svc.GenerateSchedule(ctx, p)
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	if len(records) != 14 {
		t.Fatalf("expected 14 records for twice daily over a week, got %d", len(records))
	}

	target := records[3].AdherenceID

	if _, err := svc.RecordDose(ctx, target, false, true); err != nil {
		t.Fatalf("skip dose: %v", err)
	}
	corrected, err := svc.RecordDose(ctx, target, true, false)
	if err != nil {
		t.Fatalf("correct dose: %v", err)
	}
	if corrected.Status() != adherence.DoseTaken {
		t.Errorf("expected taken after correction, got %s", corrected.Status())
	}

	stats, err := svc.Stats(ctx, "pat-flow-2", "rx-flow-2")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Taken != 1 || stats.Skipped != 0 || stats.Pending != 13 {
		t.Errorf("expected 1 taken, 0 skipped, 13 pending, got %d/%d/%d",
			stats.Taken, stats.Skipped, stats.Pending)
	}
}
