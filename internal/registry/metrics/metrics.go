package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
// Tracks registration outcomes and read-path durations.
type Metrics struct {
	UniversitiesRegistered prometheus.Counter
	RegistrationsRejected  *prometheus.CounterVec
	RegisterDuration       prometheus.Histogram
	LookupDuration         prometheus.Histogram
	ListDuration           prometheus.Histogram
}

// New creates a Metrics instance with all registry module metrics registered.
func New() *Metrics {
	return &Metrics{
		UniversitiesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unireg_universities_registered_total",
			Help: "Total number of universities registered",
		}),
		RegistrationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unireg_registrations_rejected_total",
			Help: "Total number of rejected registration attempts by reason",
		}, []string{"reason"}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unireg_register_duration_seconds",
			Help:    "Duration of AddUniversity operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unireg_lookup_duration_seconds",
			Help:    "Duration of by-account lookups (registry hot path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ListDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unireg_list_duration_seconds",
			Help:    "Duration of full and by-name listings",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRegistered records a successful registration.
func (m *Metrics) IncrementRegistered() {
	m.UniversitiesRegistered.Inc()
}

// IncrementRejected records a rejected registration attempt.
func (m *Metrics) IncrementRejected(reason string) {
	m.RegistrationsRejected.WithLabelValues(reason).Inc()
}

// ObserveRegister records the duration of an AddUniversity operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveLookup records the duration of a by-account lookup.
func (m *Metrics) ObserveLookup(start time.Time) {
	m.LookupDuration.Observe(time.Since(start).Seconds())
}

// ObserveList records the duration of a listing operation.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}
