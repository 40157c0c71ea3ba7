// Package metrics exposes Prometheus collectors for the scrape job.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchDurationSeconds  *prometheus.HistogramVec
	recordsExtractedTotal prometheus.Counter
	recordsStoredTotal    prometheus.Counter
	runsTotal             *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "countryscrape_fetch_duration_seconds",
				Help:    "Histogram of source page fetch latencies, labeled by status code.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"status"},
		)

		recordsExtractedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "countryscrape_records_extracted_total",
				Help: "Total number of country records extracted from the source page.",
			},
		)

		recordsStoredTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "countryscrape_records_stored_total",
				Help: "Total number of country records written to the store.",
			},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "countryscrape_runs_total",
				Help: "Total job runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// ObserveFetch records the duration of one fetch attempt.
func ObserveFetch(status int, d time.Duration) {
	if fetchDurationSeconds == nil {
		return
	}
	fetchDurationSeconds.WithLabelValues(strconv.Itoa(status)).Observe(d.Seconds())
}

// AddExtracted increments the extracted-records counter.
func AddExtracted(n int) {
	if recordsExtractedTotal == nil {
		return
	}
	recordsExtractedTotal.Add(float64(n))
}

// AddStored increments the stored-records counter.
func AddStored(n int) {
	if recordsStoredTotal == nil {
		return
	}
	recordsStoredTotal.Add(float64(n))
}

// Run outcomes reported via IncRun.
const (
	OutcomeSuccess    = "success"
	OutcomeFetchError = "fetch_error"
	OutcomeNoRecords  = "no_records"
	OutcomeStoreError = "store_error"
)

// IncRun records the outcome of one job run.
func IncRun(outcome string) {
	if runsTotal == nil {
		return
	}
	runsTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
