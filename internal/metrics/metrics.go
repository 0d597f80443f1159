package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScanRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kudos_scan_runs_total",
		Help: "Total notification scan passes",
	})
	ScanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kudos_scan_errors_total",
		Help: "Total failed scan passes",
	})
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kudos_scan_duration_seconds",
		Help:    "Scan pass duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	EventsExtracted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kudos_events_extracted_total",
		Help: "Engagement events parsed from the feed",
	})
	ParseSkips = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kudos_entry_parse_skips_total",
		Help: "Feed entries skipped because they could not be parsed",
	})
	StagedOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kudos_staged_outcomes_total",
		Help: "Comment staging attempts by outcome",
	}, []string{"outcome"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kudos_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"cmd"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kudos_command_errors_total",
		Help: "CLI command failures",
	}, []string{"cmd"})
)

func init() {
	prometheus.MustRegister(ScanRuns, ScanErrors, ScanDuration, EventsExtracted, ParseSkips, StagedOutcomes, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveScanDuration records a scan pass duration.
func ObserveScanDuration(start time.Time) {
	ScanDuration.Observe(time.Since(start).Seconds())
}

// IncStagedOutcome increments the staging counter for an outcome.
func IncStagedOutcome(outcome string) { StagedOutcomes.WithLabelValues(outcome).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
