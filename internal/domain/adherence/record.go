// Package adherence implements the medication adherence engine: expanding a
// sent prescription into a dated dose schedule, recording patient-reported
// dose outcomes, and aggregating compliance statistics.
package adherence

import (
	"time"
)

// DoseStatus is the derived state of a single scheduled dose.
type DoseStatus string

const (
	DosePending DoseStatus = "pending"
	DoseTaken   DoseStatus = "taken"
	DoseSkipped DoseStatus = "skipped"
)

// Record is one scheduled dose of one medicine on one date for one patient.
// Schedule fields (prescription, medicine, date, time) are fixed at
// generation; only the outcome fields change afterwards.
type Record struct {
	AdherenceID    string     `json:"adherence_id"`
	PrescriptionID string     `json:"prescription_id"`
	PatientID      string     `json:"pid"`
	MedicineName   string     `json:"medicine_name"`
	ScheduledDate  time.Time  `json:"scheduled_date"`
	ScheduledTime  string     `json:"scheduled_time"`
	IsTaken        bool       `json:"is_taken"`
	IsSkipped      bool       `json:"is_skipped"`
	TakenAt        *time.Time `json:"taken_at,omitempty"`
	SkipReason     string     `json:"skip_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Status derives the dose state from the two outcome flags.
func (r *Record) Status() DoseStatus {
	switch {
	case r.IsTaken:
		return DoseTaken
	case r.IsSkipped:
		return DoseSkipped
	default:
		return DosePending
	}
}

// Apply transitions the record to the requested outcome. Taken and skipped
// are mutually exclusive; when both are requested, taken wins because the
// portal only ever issues single-intent toggles. TakenAt is stamped when the
// dose becomes taken and cleared on any transition away from taken.
// Re-applying the current state is a no-op apart from the TakenAt re-stamp.
func (r *Record) Apply(taken, skipped bool, now time.Time) {
	if taken {
		skipped = false
	}

	r.IsTaken = taken
	r.IsSkipped = skipped

	if taken {
		at := now.UTC()
		r.TakenAt = &at
	} else {
		r.TakenAt = nil
	}
	if !skipped {
		r.SkipReason = ""
	}
	r.UpdatedAt = now.UTC()
}
