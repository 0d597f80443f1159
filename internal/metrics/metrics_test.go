package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	ScanRuns.Inc()
	ScanErrors.Inc()
	EventsExtracted.Add(3)
	ParseSkips.Inc()
	IncStagedOutcome("staged")
	IncCommandRun("scan")
	IncCommandError("scan")
	ObserveScanDuration(time.Now().Add(-1500 * time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"kudos_scan_runs_total",
		"kudos_scan_errors_total",
		"kudos_scan_duration_seconds",
		"kudos_events_extracted_total",
		"kudos_entry_parse_skips_total",
		"kudos_staged_outcomes_total",
		"kudos_command_runs_total",
		"kudos_command_errors_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
