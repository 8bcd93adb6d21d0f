// Package notify builds the HTML emails the notifier sends when domain
// events arrive.
package notify

import (
	"fmt"
	"html/template"
	"strings"
)

// AppointmentEmail carries the fields of an appointment confirmation.
type AppointmentEmail struct {
	RecipientName  string
	PatientName    string
	DoctorName     string
	Date           string
	Time           string
	Mode           string
	ChiefComplaint string
	MeetingLink    string
	TokenNumber    *int
}

// PrescriptionEmail carries the fields of a prescription-sent notice.
type PrescriptionEmail struct {
	RecipientName string
	DoctorName    string
	Diagnosis     string
	Medicines     []PrescribedMedicine
	Instructions  string
	DashboardLink string
}

// PrescribedMedicine is one row of the medicines table in the email.
type PrescribedMedicine struct {
	Name      string
	Dosage    string
	Frequency string
	Duration  string
}

const emailShell = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; color: #333; background: #f5f5f5; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 20px auto; background: white; border-radius: 8px; overflow: hidden;">
    <div style="background: linear-gradient(135deg, #f0fdf4 0%, #d1fae5 50%, #ccfbf1 100%); padding: 40px 30px; text-align: center; border-bottom: 3px solid #10B981;">
      <div style="font-size: 28px; font-weight: bold; color: #065f46;">AuraSutra</div>
      <p style="color: #111827; font-size: 14px; margin: 10px 0 0 0;">Ayurvedic Care, Digitally Delivered</p>
    </div>
    <div style="padding: 40px 30px;">
{{.Body}}
    </div>
    <div style="padding: 20px 30px; border-top: 1px solid #e5e7eb; font-size: 12px; color: #6b7280; text-align: center;">
      This is an automated message from AuraSutra. Please do not reply to this email.
    </div>
  </div>
</body>
</html>`

var (
	shellTmpl = template.Must(template.New("shell").Parse(emailShell))

	appointmentTmpl = template.Must(template.New("appointment").Parse(`
      <p style="font-size: 16px;">Dear {{.RecipientName}},</p>
      <p>Your appointment has been confirmed. Here are the details:</p>
      <div style="background: #f8f9fa; padding: 25px; margin: 25px 0; border-radius: 6px; border-left: 4px solid #10b981;">
        <div style="margin: 12px 0;"><strong style="min-width: 140px; display: inline-block; color: #555;">Doctor:</strong> Dr. {{.DoctorName}}</div>
        <div style="margin: 12px 0;"><strong style="min-width: 140px; display: inline-block; color: #555;">Date:</strong> {{.Date}}</div>
        <div style="margin: 12px 0;"><strong style="min-width: 140px; display: inline-block; color: #555;">Time:</strong> {{.Time}}</div>
        <div style="margin: 12px 0;"><strong style="min-width: 140px; display: inline-block; color: #555;">Mode:</strong> {{.ModeDisplay}}</div>
        <div style="margin: 12px 0;"><strong style="min-width: 140px; display: inline-block; color: #555;">Chief Complaint:</strong> {{.ChiefComplaint}}</div>
        {{if .TokenNumber}}<div style="margin: 12px 0;"><strong style="min-width: 140px; display: inline-block; color: #555;">Token Number:</strong> {{.TokenNumber}}</div>{{end}}
      </div>
      {{if .MeetingLink}}
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.MeetingLink}}" style="display: inline-block; padding: 14px 32px; background: #10b981; color: white; text-decoration: none; border-radius: 6px; font-weight: 600;">Join Consultation</a>
      </div>
      {{end}}
      <div style="background: #f0fdf4; padding: 15px; border-radius: 6px; border-left: 4px solid #10B981; font-size: 14px;">
        Please be available 5 minutes before your scheduled time.
      </div>`))

	prescriptionTmpl = template.Must(template.New("prescription").Parse(`
      <p style="font-size: 16px;">Dear {{.RecipientName}},</p>
      <p>Dr. {{.DoctorName}} has sent you a new prescription{{if .Diagnosis}} for <strong>{{.Diagnosis}}</strong>{{end}}.</p>
      <table style="width: 100%; border-collapse: collapse; margin: 25px 0;">
        <tr style="background: #f0fdf4;">
          <th style="padding: 10px; text-align: left; border-bottom: 2px solid #10b981;">Medicine</th>
          <th style="padding: 10px; text-align: left; border-bottom: 2px solid #10b981;">Dosage</th>
          <th style="padding: 10px; text-align: left; border-bottom: 2px solid #10b981;">Frequency</th>
          <th style="padding: 10px; text-align: left; border-bottom: 2px solid #10b981;">Duration</th>
        </tr>
        {{range .Medicines}}
        <tr>
          <td style="padding: 10px; border-bottom: 1px solid #e5e7eb;">{{.Name}}</td>
          <td style="padding: 10px; border-bottom: 1px solid #e5e7eb;">{{.Dosage}}</td>
          <td style="padding: 10px; border-bottom: 1px solid #e5e7eb;">{{.Frequency}}</td>
          <td style="padding: 10px; border-bottom: 1px solid #e5e7eb;">{{.Duration}}</td>
        </tr>
        {{end}}
      </table>
      {{if .Instructions}}
      <div style="background: #f8f9fa; padding: 15px; border-radius: 6px; margin: 20px 0;">
        <strong>Instructions:</strong> {{.Instructions}}
      </div>
      {{end}}
      <p>Your daily medication schedule is ready in the portal. Mark each dose as you take it to track your progress.</p>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.DashboardLink}}" style="display: inline-block; padding: 14px 32px; background: #10b981; color: white; text-decoration: none; border-radius: 6px; font-weight: 600;">View My Medications</a>
      </div>`))
)

// AppointmentCreatedSubject builds the confirmation subject line.
func AppointmentCreatedSubject(date string) string {
	return fmt.Sprintf("Appointment Confirmed - %s", date)
}

// PrescriptionSentSubject builds the prescription notice subject line.
func PrescriptionSentSubject(doctorName string) string {
	return fmt.Sprintf("New Prescription from Dr. %s", doctorName)
}

// RenderAppointmentCreated renders the appointment confirmation email.
func RenderAppointmentCreated(data AppointmentEmail) (string, error) {
	view := struct {
		AppointmentEmail
		ModeDisplay string
	}{AppointmentEmail: data, ModeDisplay: "In-Person Visit"}
	if data.Mode == "online" {
		view.ModeDisplay = "Online Consultation"
	}
	return render(appointmentTmpl, view)
}

// RenderPrescriptionSent renders the prescription-sent email.
func RenderPrescriptionSent(data PrescriptionEmail) (string, error) {
	return render(prescriptionTmpl, data)
}

func render(body *template.Template, data any) (string, error) {
	var inner strings.Builder
	if err := body.Execute(&inner, data); err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}

	var out strings.Builder
	err := shellTmpl.Execute(&out, struct{ Body template.HTML }{Body: template.HTML(inner.String())})
	if err != nil {
		return "", fmt.Errorf("render email shell: %w", err)
	}
	return out.String(), nil
}
