package adherence

import (
	"math"
	"sort"
	"time"
)

// MedicineStats is the per-medicine compliance breakdown.
type MedicineStats struct {
	MedicineName  string `json:"medicine_name"`
	Total         int    `json:"total"`
	Taken         int    `json:"taken"`
	Skipped       int    `json:"skipped"`
	AdherenceRate int    `json:"adherence_rate"`
}

// Stats is the overall compliance summary for a set of records.
type Stats struct {
	Total         int             `json:"total"`
	Taken         int             `json:"taken"`
	Skipped       int             `json:"skipped"`
	Pending       int             `json:"pending"`
	AdherenceRate int             `json:"adherence_rate"`
	Breakdown     []MedicineStats `json:"breakdown"`
}

// TrendPoint is one calendar day of the adherence trend series.
type TrendPoint struct {
	Date    time.Time `json:"date"`
	Taken   int       `json:"taken_count"`
	Skipped int       `json:"skipped_count"`
}

// MedicineShare is a medicine's taken percentage across a trend window.
type MedicineShare struct {
	MedicineName string `json:"medicine_name"`
	Percent      int    `json:"percent"`
}

// TrendReport is the windowed aggregation consumed by the dashboard charts.
type TrendReport struct {
	Days         []TrendPoint    `json:"days"`
	TopMedicines []MedicineShare `json:"top_medicines"`
}

// ComputeStats aggregates compliance counts and rates over records.
// Zero records yields a zero rate and an empty breakdown, never an error.
func ComputeStats(records []Record) Stats {
	stats := Stats{Breakdown: []MedicineStats{}}

	byMedicine := make(map[string]*MedicineStats)
	for _, r := range records {
		stats.Total++
		m, ok := byMedicine[r.MedicineName]
		if !ok {
			m = &MedicineStats{MedicineName: r.MedicineName}
			byMedicine[r.MedicineName] = m
		}
		m.Total++

		switch {
		case r.IsTaken:
			stats.Taken++
			m.Taken++
		case r.IsSkipped:
			stats.Skipped++
			m.Skipped++
		}
	}
	stats.Pending = stats.Total - stats.Taken - stats.Skipped
	stats.AdherenceRate = percentage(stats.Taken, stats.Total)

	for _, m := range byMedicine {
		m.AdherenceRate = percentage(m.Taken, m.Total)
		stats.Breakdown = append(stats.Breakdown, *m)
	}
	sort.Slice(stats.Breakdown, func(i, j int) bool {
		return stats.Breakdown[i].MedicineName < stats.Breakdown[j].MedicineName
	})

	return stats
}

// PendingOn filters records to pending doses scheduled on the given date,
// ordered by scheduled time (earliest first), ties broken by medicine name.
func PendingOn(records []Record, date time.Time) []Record {
	day := dateOf(date)

	var pending []Record
	for _, r := range records {
		if r.Status() != DosePending {
			continue
		}
		if !dateOf(r.ScheduledDate).Equal(day) {
			continue
		}
		pending = append(pending, r)
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].ScheduledTime != pending[j].ScheduledTime {
			return pending[i].ScheduledTime < pending[j].ScheduledTime
		}
		return pending[i].MedicineName < pending[j].MedicineName
	})
	return pending
}

// ComputeTrend buckets records scheduled within the last windowDays days
// (inclusive of today) by calendar date, and ranks medicines by taken
// percentage, truncated to the top three for the dashboard chart.
func ComputeTrend(records []Record, windowDays int, today time.Time) (TrendReport, error) {
	if windowDays <= 0 {
		return TrendReport{}, &ValidationError{Field: "windowDays", Reason: "must be positive"}
	}

	end := dateOf(today)
	start := end.AddDate(0, 0, -(windowDays - 1))

	byDay := make(map[string]*TrendPoint)
	type medCount struct{ taken, total int }
	byMedicine := make(map[string]*medCount)

	for _, r := range records {
		day := dateOf(r.ScheduledDate)
		if day.Before(start) || day.After(end) {
			continue
		}

		key := day.Format("2006-01-02")
		point, ok := byDay[key]
		if !ok {
			point = &TrendPoint{Date: day}
			byDay[key] = point
		}
		if r.IsTaken {
			point.Taken++
		} else if r.IsSkipped {
			point.Skipped++
		}

		mc, ok := byMedicine[r.MedicineName]
		if !ok {
			mc = &medCount{}
			byMedicine[r.MedicineName] = mc
		}
		mc.total++
		if r.IsTaken {
			mc.taken++
		}
	}

	report := TrendReport{Days: []TrendPoint{}, TopMedicines: []MedicineShare{}}
	for _, point := range byDay {
		report.Days = append(report.Days, *point)
	}
	sort.Slice(report.Days, func(i, j int) bool {
		return report.Days[i].Date.Before(report.Days[j].Date)
	})

	for name, mc := range byMedicine {
		report.TopMedicines = append(report.TopMedicines, MedicineShare{
			MedicineName: name,
			Percent:      percentage(mc.taken, mc.total),
		})
	}
	sort.Slice(report.TopMedicines, func(i, j int) bool {
		if report.TopMedicines[i].Percent != report.TopMedicines[j].Percent {
			return report.TopMedicines[i].Percent > report.TopMedicines[j].Percent
		}
		return report.TopMedicines[i].MedicineName < report.TopMedicines[j].MedicineName
	})
	if len(report.TopMedicines) > 3 {
		report.TopMedicines = report.TopMedicines[:3]
	}

	return report, nil
}

// percentage returns round(100*part/total), 0 when total is 0.
func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
