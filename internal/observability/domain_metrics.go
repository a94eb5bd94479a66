package observability

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	tablesExtractedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schemapilot_tables_extracted_total",
			Help: "Total number of tables successfully extracted.",
		},
	)
	tablesSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schemapilot_tables_skipped_total",
			Help: "Total number of tables skipped after a metadata query failure.",
		},
	)
	extractDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "schemapilot_extract_duration_seconds",
			Help:    "Wall time of the extraction stage.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	generationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemapilot_generation_total",
			Help: "Generation attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		tablesExtractedTotal,
		tablesSkippedTotal,
		extractDurationSeconds,
		generationTotal,
	)
}

func ObserveExtraction(tables, skipped int, elapsed time.Duration) {
	if tables > 0 {
		tablesExtractedTotal.Add(float64(tables))
	}
	if skipped > 0 {
		tablesSkippedTotal.Add(float64(skipped))
	}
	extractDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveGeneration(degraded bool) {
	outcome := "succeeded"
	if degraded {
		outcome = "degraded"
	}
	generationTotal.WithLabelValues(outcome).Inc()
}

// PushMetrics ships the collected run metrics to a Prometheus pushgateway.
// The process exits right after one run, so there is nothing for a scraper to
// find; the push is how the counters survive the process.
func PushMetrics(url, job string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("pushgateway url is required")
	}
	if job == "" {
		job = "schemapilot"
	}
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
