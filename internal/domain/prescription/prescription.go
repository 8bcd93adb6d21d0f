// Package prescription models doctor-authored prescriptions as consumed by
// the patient portal. Prescriptions are created by the doctor-side system;
// this service reads them and owns only the draft-to-sent transition that
// triggers adherence schedule generation.
package prescription

import (
	"errors"
	"time"
)

// ErrNotFound indicates the prescription does not exist.
var ErrNotFound = errors.New("prescription not found")

// ErrAlreadySent indicates the one-way sent transition was already applied.
var ErrAlreadySent = errors.New("prescription already sent to patient")

// Medicine is one entry of a prescription's medicine list. Dosage, frequency
// and duration are free text as entered by the doctor.
type Medicine struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
	Notes     string `json:"notes,omitempty"`
}

// Prescription is a doctor-authored set of medicines for a patient.
type Prescription struct {
	PrescriptionID string     `json:"prescription_id"`
	AppointmentID  string     `json:"aid,omitempty"`
	PatientID      string     `json:"pid"`
	DoctorID       string     `json:"did"`
	Diagnosis      string     `json:"diagnosis"`
	Symptoms       []string   `json:"symptoms,omitempty"`
	Medicines      []Medicine `json:"medicines"`
	Instructions   string     `json:"instructions,omitempty"`
	DietAdvice     string     `json:"diet_advice,omitempty"`
	FollowUpDate   *time.Time `json:"follow_up_date,omitempty"`
	IsActive       bool       `json:"is_active"`
	SentToPatient  bool       `json:"sent_to_patient"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
