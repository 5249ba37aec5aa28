package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AttemptsStarted      prometheus.Counter
	AttemptOutcomes      *prometheus.CounterVec
	ChallengesPresented  *prometheus.CounterVec
	LookupDuration       prometheus.Histogram
	AuthenticateDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		AttemptsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trident_verification_attempts_total",
			Help: "Total number of verification attempts started",
		}),
		AttemptOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trident_verification_outcomes_total",
			Help: "Terminal verification outcomes by status",
		}, []string{"outcome"}),
		ChallengesPresented: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trident_challenges_presented_total",
			Help: "Challenges presented by protocol version",
		}, []string{"version"}),
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trident_lookup_duration_seconds",
			Help:    "Duration of gateway lookup calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AuthenticateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trident_authenticate_duration_seconds",
			Help:    "Duration of gateway JWT-authentication calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) IncrementAttempts() {
	m.AttemptsStarted.Inc()
}

func (m *Metrics) IncrementOutcome(outcome string) {
	m.AttemptOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementChallengePresented(version string) {
	m.ChallengesPresented.WithLabelValues(version).Inc()
}

func (m *Metrics) ObserveLookup(start time.Time) {
	m.LookupDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveAuthenticate(start time.Time) {
	m.AuthenticateDuration.Observe(time.Since(start).Seconds())
}
