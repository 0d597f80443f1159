package analytics

import (
	"sort"
	"time"

	"kudos/internal/model"
	"kudos/internal/store/actionlog"
)

// HourlyEngagement aggregates events into per-hour buckets by action kind.
func HourlyEngagement(events []model.EngagementEvent) map[time.Time]map[model.ActionKind]int {
	buckets := make(map[time.Time]map[model.ActionKind]int)
	for _, e := range events {
		key := e.ObservedAt.UTC().Truncate(time.Hour)
		if _, ok := buckets[key]; !ok {
			buckets[key] = make(map[model.ActionKind]int)
		}
		buckets[key][e.Kind]++
	}
	return buckets
}

// HourlyActions aggregates logged actions (staged comments etc.) per hour.
func HourlyActions(actions []actionlog.Action) map[time.Time]int {
	buckets := make(map[time.Time]int)
	for _, a := range actions {
		buckets[a.TS.UTC().Truncate(time.Hour)]++
	}
	return buckets
}

// SortedBucketKeys returns sorted hour keys.
func SortedBucketKeys[V any](m map[time.Time]V) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}
