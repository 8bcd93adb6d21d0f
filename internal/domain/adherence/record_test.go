package adherence

import (
	"testing"
	"time"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name    string
		taken   bool
		skipped bool
		want    DoseStatus
	}{
		{"pending", false, false, DosePending},
		{"taken", true, false, DoseTaken},
		{"skipped", false, true, DoseSkipped},
	}

	for _, tt := range tests {
		r := Record{IsTaken: tt.taken, IsSkipped: tt.skipped}
		if got := r.Status(); got != tt.want {
			t.Errorf("%s: Status() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestApplyTaken(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)
	r := Record{}

	r.Apply(true, false, now)

	if r.Status() != DoseTaken {
		t.Fatalf("status = %s, want taken", r.Status())
	}
	if r.TakenAt == nil || !r.TakenAt.Equal(now) {
		t.Errorf("taken_at = %v, want %v", r.TakenAt, now)
	}
	if !r.UpdatedAt.Equal(now) {
		t.Errorf("updated_at = %v, want %v", r.UpdatedAt, now)
	}
}

func TestApplyTakenWinsOverSkipped(t *testing.T) {
	r := Record{}
	r.Apply(true, true, time.Now())

	if !r.IsTaken || r.IsSkipped {
		t.Fatalf("taken=%v skipped=%v, want taken only", r.IsTaken, r.IsSkipped)
	}
}

func TestApplySkippedClearsTakenAt(t *testing.T) {
	r := Record{}
	r.Apply(true, false, time.Now())
	r.Apply(false, true, time.Now())

	if r.Status() != DoseSkipped {
		t.Fatalf("status = %s, want skipped", r.Status())
	}
	if r.TakenAt != nil {
		t.Errorf("taken_at = %v, want nil after un-taking", r.TakenAt)
	}
}

func TestApplyReopen(t *testing.T) {
	r := Record{SkipReason: "felt nauseous"}
	r.Apply(false, true, time.Now())
	r.Apply(false, false, time.Now())

	if r.Status() != DosePending {
		t.Fatalf("status = %s, want pending", r.Status())
	}
	if r.TakenAt != nil || r.SkipReason != "" {
		t.Errorf("reopened record kept outcome fields: taken_at=%v skip_reason=%q", r.TakenAt, r.SkipReason)
	}
}

func TestApplyIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)
	r := Record{}

	r.Apply(true, false, now)
	first := *r.TakenAt
	r.Apply(true, false, now)

	if r.Status() != DoseTaken {
		t.Fatalf("status = %s, want taken", r.Status())
	}
	if !r.TakenAt.Equal(first) {
		t.Errorf("taken_at changed on re-apply: %v -> %v", first, r.TakenAt)
	}
}
