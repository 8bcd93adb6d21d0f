// Package metrics provides Prometheus metrics for the patient portal.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	DosesRecorded       *prometheus.CounterVec
	SchedulesGenerated  prometheus.Counter
	ScheduleRecords     prometheus.Histogram
	AppointmentsBooked  prometheus.Counter
	PaymentsRecorded    prometheus.Counter
	EmailsSent          prometheus.Counter
	EmailsFailed        prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
	EventsProduced      prometheus.Counter
	EventsConsumed      prometheus.Counter
	OutboxPending       prometheus.Gauge
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		DosesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adherence_doses_recorded_total",
			Help: "Dose outcomes recorded, by resulting status",
		}, []string{"status"}),
		SchedulesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adherence_schedules_generated_total",
			Help: "Prescription schedules expanded into dose records",
		}),
		ScheduleRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "adherence_schedule_records",
			Help:    "Dose records produced per generated schedule",
			Buckets: []float64{1, 7, 14, 30, 60, 120, 240},
		}),
		AppointmentsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appointments_booked_total",
			Help: "Appointments booked",
		}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Verified payment transactions recorded",
		}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_emails_sent_total",
			Help: "Notification emails delivered",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_emails_failed_total",
			Help: "Notification emails that exhausted retries",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"route"}),
		EventsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stream_events_produced_total",
			Help: "Domain events published to the stream",
		}),
		EventsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stream_events_consumed_total",
			Help: "Domain events consumed from the stream",
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Pending outbox entries",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.DosesRecorded,
		m.SchedulesGenerated,
		m.ScheduleRecords,
		m.AppointmentsBooked,
		m.PaymentsRecorded,
		m.EmailsSent,
		m.EmailsFailed,
		m.RequestDuration,
		m.EventsProduced,
		m.EventsConsumed,
		m.OutboxPending,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
