package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pingsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placevisit_pings_processed_total",
			Help: "Total number of pings processed, by outcome",
		},
		[]string{"outcome"},
	)

	pingsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placevisit_pings_failed_total",
			Help: "Total number of pings that failed, by error kind",
		},
		[]string{"kind"},
	)

	pingProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "placevisit_ping_processing_duration_seconds",
			Help:    "Ping processing duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	visitsOpenedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "placevisit_visits_opened_total",
			Help: "Total number of visits confirmed",
		},
	)

	visitsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placevisit_visits_closed_total",
			Help: "Total number of visits closed, by reason",
		},
		[]string{"reason"},
	)

	candidatesEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "placevisit_candidates_evicted_total",
			Help: "Total number of stale candidates removed",
		},
	)

	notifyFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "placevisit_notify_failures_total",
			Help: "Total number of visit events that could not be published",
		},
	)
)

// Close reasons
const (
	CloseReasonStale      = "stale"
	CloseReasonCrossPlace = "cross_place"
)

// RecordPing records a processed ping and its latency
func RecordPing(outcome string, duration time.Duration) {
	pingsProcessedTotal.WithLabelValues(outcome).Inc()
	pingProcessingDuration.Observe(duration.Seconds())
}

// RecordPingFailure records a ping that returned an error
func RecordPingFailure(kind string) {
	pingsFailedTotal.WithLabelValues(kind).Inc()
}

func RecordVisitOpened() {
	visitsOpenedTotal.Inc()
}

func RecordVisitClosed(reason string) {
	visitsClosedTotal.WithLabelValues(reason).Inc()
}

func RecordCandidatesEvicted(n int) {
	candidatesEvictedTotal.Add(float64(n))
}

func RecordNotifyFailure() {
	notifyFailuresTotal.Inc()
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
