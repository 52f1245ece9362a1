// Package metrics exposes Prometheus collectors for the crawler core.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerOutcomesTotal     *prometheus.CounterVec
	crawlerBytesTotal        *prometheus.CounterVec
	crawlerNavAttemptsTotal  *prometheus.CounterVec
	ingestDeliveriesTotal    *prometheus.CounterVec
	crawlerBatchSecondsHist  prometheus.Histogram
	crawlerActiveTargetsNow  prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times;
// the observation helpers call it lazily.
func Init() {
	once.Do(func() {
		crawlerOutcomesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_outcomes_total",
				Help: "Terminal outcomes per target, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		crawlerBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_bytes_total",
				Help: "Total HTML bytes captured, labeled by site.",
			},
			[]string{"site"},
		)

		crawlerNavAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_navigation_attempts_total",
				Help: "Navigation ladder attempts, labeled by strategy.",
			},
			[]string{"strategy"},
		)

		ingestDeliveriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_deliveries_total",
				Help: "Payload deliveries, labeled by path (stream or fallback).",
			},
			[]string{"path"},
		)

		crawlerBatchSecondsHist = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_batch_duration_seconds",
				Help:    "Histogram of wall time per target batch.",
				Buckets: []float64{5, 15, 30, 60, 120, 300},
			},
		)

		crawlerActiveTargetsNow = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_active_targets",
				Help: "Targets currently inside the single-target pipeline.",
			},
		)
	})
}

// SanitizeSite extracts a lowercase hostname from a URL, or "unknown".
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveOutcome counts one terminal outcome for a target.
func ObserveOutcome(site, status string, htmlBytes int) {
	Init()
	crawlerOutcomesTotal.WithLabelValues(SanitizeSite(site), status).Inc()
	if htmlBytes > 0 {
		crawlerBytesTotal.WithLabelValues(SanitizeSite(site)).Add(float64(htmlBytes))
	}
}

// ObserveNavAttempt counts one ladder attempt.
func ObserveNavAttempt(strategy string) {
	Init()
	crawlerNavAttemptsTotal.WithLabelValues(strategy).Inc()
}

// ObserveDelivery counts one payload delivery on the given path.
func ObserveDelivery(path string) {
	Init()
	ingestDeliveriesTotal.WithLabelValues(path).Inc()
}

// ObserveBatch records the wall time of one completed batch.
func ObserveBatch(seconds float64) {
	Init()
	crawlerBatchSecondsHist.Observe(seconds)
}

// TargetStarted and TargetFinished track pipeline occupancy.
func TargetStarted() {
	Init()
	crawlerActiveTargetsNow.Inc()
}

// TargetFinished decrements the occupancy gauge.
func TargetFinished() {
	Init()
	crawlerActiveTargetsNow.Dec()
}
