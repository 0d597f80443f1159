// Package extract turns the rendered notifications feed into structured
// engagement events. One extraction pass scroll-paginates the feed; the
// record store, not the extractor, is the authority on deduplication.
package extract

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"kudos/internal/browser"
	"kudos/internal/logging"
	"kudos/internal/metrics"
	"kudos/internal/model"
	"kudos/internal/util"
)

// ExtractionError is fatal for one extraction pass: the feed failed to load,
// pagination broke, a timeout hit, or the pass was cancelled. Per-entry parse
// failures never produce one.
type ExtractionError struct {
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// timeLayouts are the timestamp formats seen in the entry title attribute.
var timeLayouts = []string{
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ErrEntryUnparseable marks an entry that cannot become an event.
var ErrEntryUnparseable = errors.New("entry unparseable")

// ParseEntry converts one raw page entry into an event. The source event id
// is derived from the entry's stable rendered fields since the page exposes
// no id of its own.
func ParseEntry(e browser.Entry) (model.EngagementEvent, error) {
	actor := strings.TrimSpace(e.ActorID)
	name := util.NormalizeWhitespace(e.ActorName)
	action := util.NormalizeWhitespace(e.ActionText)
	if actor == "" || name == "" || action == "" {
		return model.EngagementEvent{}, fmt.Errorf("%w: actor=%q name=%q action=%q", ErrEntryUnparseable, actor, name, action)
	}
	at, err := parseEntryTime(e.TimeTitle)
	if err != nil {
		return model.EngagementEvent{}, fmt.Errorf("%w: %v", ErrEntryUnparseable, err)
	}
	h := sha1.Sum([]byte(actor + "|" + action + "|" + e.TimeTitle))
	return model.EngagementEvent{
		ActorID:       actor,
		ActorName:     name,
		Kind:          model.KindFromText(action),
		ObservedAt:    at,
		SourceEventID: hex.EncodeToString(h[:]),
		Following:     e.Following,
	}, nil
}

func parseEntryTime(title string) (time.Time, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, title); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", title)
}

// Extract runs one pass over the notifications surface and returns the events
// it could parse. known (optional) reports whether a source event id is
// already persisted; two consecutive known entries end the pass early since
// everything below them was scraped before. Cancellation is checked between
// entries and pages; the caller merges only after a pass completes, so a
// returned error means the store stays untouched.
func Extract(ctx context.Context, surface browser.Surface, maxPages int, known func(string) bool) ([]model.EngagementEvent, error) {
	if maxPages <= 0 {
		maxPages = 1
	}
	if err := surface.Open(ctx); err != nil {
		return nil, &ExtractionError{Stage: "open", Err: err}
	}

	seen := make(map[string]struct{})
	var events []model.EngagementEvent
	for pageNo := 0; pageNo < maxPages; pageNo++ {
		if err := ctx.Err(); err != nil {
			return nil, &ExtractionError{Stage: "cancelled", Err: err}
		}
		entries, err := surface.ListEntries(ctx)
		if err != nil {
			return nil, &ExtractionError{Stage: "list", Err: err}
		}

		newOnPage := 0
		consecutiveKnown := 0
		for _, raw := range entries {
			if err := ctx.Err(); err != nil {
				return nil, &ExtractionError{Stage: "cancelled", Err: err}
			}
			ev, err := ParseEntry(raw)
			if err != nil {
				metrics.ParseSkips.Inc()
				logging.Info("entry_skipped", map[string]any{"error": err.Error()})
				continue
			}
			if _, dup := seen[ev.SourceEventID]; dup {
				// Re-rendered by the infinite scroll; already collected this pass.
				continue
			}
			seen[ev.SourceEventID] = struct{}{}
			if known != nil && known(ev.SourceEventID) {
				consecutiveKnown++
				if consecutiveKnown >= 2 {
					logging.Info("extract_reached_known", map[string]any{"events": len(events)})
					return events, nil
				}
				continue
			}
			consecutiveKnown = 0
			events = append(events, ev)
			newOnPage++
		}

		if newOnPage == 0 {
			break
		}
		if pageNo+1 < maxPages {
			if err := surface.LoadMore(ctx); err != nil {
				return nil, &ExtractionError{Stage: "paginate", Err: err}
			}
		}
	}
	metrics.EventsExtracted.Add(float64(len(events)))
	return events, nil
}
