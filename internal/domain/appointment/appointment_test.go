package appointment

import "testing"

func TestBookingValidate(t *testing.T) {
	valid := BookingRequest{
		DID:            "did-1",
		ScheduledDate:  "2026-09-01",
		ScheduledTime:  "10:30",
		Mode:           ModeOnline,
		ChiefComplaint: "persistent acidity",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*BookingRequest)
	}{
		{"missing did", func(b *BookingRequest) { b.DID = "" }},
		{"missing date", func(b *BookingRequest) { b.ScheduledDate = "" }},
		{"missing time", func(b *BookingRequest) { b.ScheduledTime = "" }},
		{"missing complaint", func(b *BookingRequest) { b.ChiefComplaint = "" }},
		{"bad mode", func(b *BookingRequest) { b.Mode = "telepathic" }},
		{"empty mode", func(b *BookingRequest) { b.Mode = "" }},
	}
	for _, tt := range tests {
		b := valid
		tt.mutate(&b)
		if err := b.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow} {
		if !ValidStatus(s) {
			t.Errorf("status %q rejected", s)
		}
	}
	if ValidStatus("rescheduled") {
		t.Error("unknown status accepted")
	}
}
