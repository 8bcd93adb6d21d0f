package notify

import (
	"strings"
	"testing"
)

func TestRenderAppointmentCreated(t *testing.T) {
	token := 14
	html, err := RenderAppointmentCreated(AppointmentEmail{
		RecipientName:  "Asha Rao",
		DoctorName:     "Meera Nair",
		Date:           "September 1, 2026",
		Time:           "10:30",
		Mode:           "online",
		ChiefComplaint: "persistent acidity",
		MeetingLink:    "https://meet.example.com/room-1",
		TokenNumber:    &token,
	})
	if err != nil {
		t.Fatalf("RenderAppointmentCreated: %v", err)
	}

	for _, want := range []string{
		"Dear Asha Rao", "Dr. Meera Nair", "September 1, 2026",
		"Online Consultation", "persistent acidity",
		"https://meet.example.com/room-1", "Join Consultation",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("email missing %q", want)
		}
	}
}

func TestRenderAppointmentCreatedOffline(t *testing.T) {
	html, err := RenderAppointmentCreated(AppointmentEmail{
		RecipientName:  "Asha Rao",
		DoctorName:     "Meera Nair",
		Date:           "September 1, 2026",
		Time:           "10:30",
		Mode:           "offline",
		ChiefComplaint: "joint pain",
	})
	if err != nil {
		t.Fatalf("RenderAppointmentCreated: %v", err)
	}
	if !strings.Contains(html, "In-Person Visit") {
		t.Error("offline mode not rendered as in-person visit")
	}
	if strings.Contains(html, "Join Consultation") {
		t.Error("offline email should not carry a meeting link button")
	}
}

func TestRenderPrescriptionSent(t *testing.T) {
	html, err := RenderPrescriptionSent(PrescriptionEmail{
		RecipientName: "Asha Rao",
		DoctorName:    "Meera Nair",
		Diagnosis:     "Amlapitta",
		Medicines: []PrescribedMedicine{
			{Name: "Ashwagandha", Dosage: "500mg", Frequency: "Twice daily", Duration: "2 weeks"},
			{Name: "Triphala Churna", Dosage: "1 tsp", Frequency: "Once daily", Duration: "1 month"},
		},
		Instructions:  "Take with warm water",
		DashboardLink: "https://portal.example.com/dashboard/medications",
	})
	if err != nil {
		t.Fatalf("RenderPrescriptionSent: %v", err)
	}

	for _, want := range []string{
		"Dr. Meera Nair", "Amlapitta",
		"Ashwagandha", "Triphala Churna", "Twice daily",
		"Take with warm water", "View My Medications",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("email missing %q", want)
		}
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	html, err := RenderPrescriptionSent(PrescriptionEmail{
		RecipientName: "<script>alert(1)</script>",
		DoctorName:    "Meera Nair",
	})
	if err != nil {
		t.Fatalf("RenderPrescriptionSent: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("recipient name not escaped")
	}
}
