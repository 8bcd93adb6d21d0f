package adherence

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurasutra/patient-api/internal/domain/prescription"
)

// Canonical dose slots. Doctors write frequency as free text; the portal
// maps it onto fixed wall-clock times in the patient's day.
var (
	slotsOnceDaily   = []string{"09:00"}
	slotsTwiceDaily  = []string{"09:00", "21:00"}
	slotsThriceDaily = []string{"09:00", "14:00", "21:00"}
	slotsFourDaily   = []string{"08:00", "12:00", "16:00", "20:00"}
)

// defaultDurationDays is used when the duration text cannot be parsed.
const defaultDurationDays = 7

type frequencyRule struct {
	keywords []string
	times    []string
}

// Rules are evaluated top to bottom; the first keyword match wins. Placing
// the higher counts first keeps "four times daily" from matching "times".
var frequencyRules = []frequencyRule{
	{keywords: []string{"four times", "4 times"}, times: slotsFourDaily},
	{keywords: []string{"three times", "thrice", "3 times"}, times: slotsThriceDaily},
	{keywords: []string{"twice", "2 times"}, times: slotsTwiceDaily},
	{keywords: []string{"once", "1 time"}, times: slotsOnceDaily},
}

// ParseFrequency maps a free-text frequency onto canonical dose times.
// It is total: text that matches no rule (such as "as needed") falls back to
// a single daily dose rather than failing the prescription.
func ParseFrequency(frequency string) []string {
	normalized := strings.ToLower(strings.TrimSpace(frequency))
	for _, rule := range frequencyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.times
			}
		}
	}
	return slotsOnceDaily
}

// ParseDuration extracts a day count from free-text duration such as
// "7 days", "2 weeks" or "1 month". Months use a flat 30-day approximation.
// It is total: unparseable text falls back to 7 days.
func ParseDuration(duration string) int {
	normalized := strings.ToLower(strings.TrimSpace(duration))

	n := leadingInt(normalized)
	if n <= 0 {
		return defaultDurationDays
	}

	switch {
	case strings.Contains(normalized, "week"):
		return n * 7
	case strings.Contains(normalized, "month"):
		return n * 30
	case strings.Contains(normalized, "day"):
		return n
	default:
		return defaultDurationDays
	}
}

// leadingInt parses the integer at the start of s, ignoring leading spaces.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// ExpandSchedule deterministically expands a prescription's medicine list
// into the full set of adherence records for the prescribed duration,
// starting on the calendar date of start (day 0). An empty medicine list
// yields no records. The result is ordered by medicine, then date, then time.
func ExpandSchedule(p *prescription.Prescription, start time.Time) []Record {
	day0 := dateOf(start)
	now := start.UTC()

	var records []Record
	for _, med := range p.Medicines {
		times := ParseFrequency(med.Frequency)
		days := ParseDuration(med.Duration)

		for day := 0; day < days; day++ {
			date := day0.AddDate(0, 0, day)
			for _, slot := range times {
				records = append(records, Record{
					AdherenceID:    uuid.New().String(),
					PrescriptionID: p.PrescriptionID,
					PatientID:      p.PatientID,
					MedicineName:   med.Name,
					ScheduledDate:  date,
					ScheduledTime:  slot,
					CreatedAt:      now,
					UpdatedAt:      now,
				})
			}
		}
	}
	return records
}

// dateOf truncates a timestamp to its calendar date at UTC midnight. Dates
// scanned from the database arrive as UTC midnight while query dates come
// from the server clock in its own zone; normalizing both sides makes
// same-day comparison a plain Equal regardless of location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
