// Package appointment handles consultation booking and its status lifecycle.
package appointment

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when an appointment id does not resolve.
var ErrNotFound = errors.New("appointment: not found")

// Modes of consultation.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// Status lifecycle. Bookings are confirmed on creation because payment is
// captured before the booking call; the call states are driven by the video
// consultation flow.
const (
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

var validStatuses = map[string]bool{
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

// Appointment is one booked consultation.
type Appointment struct {
	AID            string     `json:"aid"`
	PID            string     `json:"pid"`
	DID            string     `json:"did"`
	Mode           string     `json:"mode"`
	Status         string     `json:"status"`
	ScheduledDate  string     `json:"scheduled_date"`
	ScheduledTime  string     `json:"scheduled_time"`
	ChiefComplaint string     `json:"chief_complaint"`
	Symptoms       []string   `json:"symptoms,omitempty"`
	PaymentID      string     `json:"payment_id,omitempty"`
	PaymentStatus  string     `json:"payment_status"`
	MeetingLink    string     `json:"meeting_link,omitempty"`
	TokenNumber    *int       `json:"token_number,omitempty"`
	CallStartedAt  *time.Time `json:"call_started_at,omitempty"`
	CallEndedAt    *time.Time `json:"call_ended_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BookingRequest carries the patient-supplied booking fields.
type BookingRequest struct {
	PID            string   `json:"-"`
	DID            string   `json:"did"`
	ScheduledDate  string   `json:"scheduled_date"`
	ScheduledTime  string   `json:"scheduled_time"`
	Mode           string   `json:"mode"`
	ChiefComplaint string   `json:"chief_complaint"`
	Symptoms       []string `json:"symptoms"`
	PaymentID      string   `json:"payment_id"`
	PaymentStatus  string   `json:"payment_status"`
}

// Validate checks the required booking fields.
func (b *BookingRequest) Validate() error {
	switch {
	case b.DID == "":
		return fmt.Errorf("did is required")
	case b.ScheduledDate == "":
		return fmt.Errorf("scheduled_date is required")
	case b.ScheduledTime == "":
		return fmt.Errorf("scheduled_time is required")
	case b.ChiefComplaint == "":
		return fmt.Errorf("chief_complaint is required")
	}
	if b.Mode != ModeOnline && b.Mode != ModeOffline {
		return fmt.Errorf("mode must be %q or %q", ModeOnline, ModeOffline)
	}
	return nil
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}
