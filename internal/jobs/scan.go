// Package jobs wires the scan pipeline together: extract the notifications
// feed, merge into the snapshot, and persist.
package jobs

import (
	"context"
	"time"

	"kudos/internal/browser"
	"kudos/internal/extract"
	"kudos/internal/logging"
	"kudos/internal/metrics"
	"kudos/internal/store"
	"kudos/internal/store/actionlog"
)

const scanCursorKey = "scan:last_ts"

// RunScanOnce runs one extraction pass and merges the result into the
// snapshot at snapshotPath. The merge happens only after the pass completes,
// so a failed pass leaves the snapshot exactly as it was. Returns the number
// of newly counted events.
func RunScanOnce(ctx context.Context, surface browser.Surface, db *actionlog.DB, snapshotPath string, maxPages int) (int, error) {
	start := time.Now()
	metrics.ScanRuns.Inc()

	unlock, err := store.Lock(snapshotPath)
	if err != nil {
		metrics.ScanErrors.Inc()
		return 0, err
	}
	defer unlock()

	st, err := store.Load(snapshotPath)
	if err != nil {
		metrics.ScanErrors.Inc()
		return 0, err
	}
	known := func(id string) bool {
		for _, r := range st.Users {
			if r.HasSeen(id) {
				return true
			}
		}
		return false
	}

	events, err := extract.Extract(ctx, surface, maxPages, known)
	if err != nil {
		metrics.ScanErrors.Inc()
		return 0, err
	}

	merged, fresh := store.Merge(st, events)
	if err := store.Save(snapshotPath, merged); err != nil {
		metrics.ScanErrors.Inc()
		return 0, err
	}
	if db != nil {
		_ = db.SaveCursor(ctx, scanCursorKey, time.Now().UTC().Format(time.RFC3339Nano))
	}
	logging.Info("scan_once", map[string]any{"extracted": len(events), "new": len(fresh), "users": len(merged.Users)})
	metrics.ObserveScanDuration(start)
	return len(fresh), nil
}

// RunScanLoop runs RunScanOnce on a ticker until ctx is cancelled.
func RunScanLoop(ctx context.Context, surface browser.Surface, db *actionlog.DB, snapshotPath string, maxPages int, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	// run immediately
	if _, err := RunScanOnce(ctx, surface, db, snapshotPath, maxPages); err != nil {
		logging.Error("scan_once_error", map[string]any{"error": err.Error()})
	}
	for {
		select {
		case <-ctx.Done():
			logging.Info("scan_loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			if _, err := RunScanOnce(ctx, surface, db, snapshotPath, maxPages); err != nil {
				logging.Error("scan_once_error", map[string]any{"error": err.Error()})
			}
		}
	}
}
