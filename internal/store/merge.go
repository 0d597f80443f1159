package store

import (
	"time"

	"kudos/internal/model"
)

// Merge folds extracted events into the store and returns the updated store
// plus the events that were counted for the first time, in input order.
//
// Merge is pure: the input store is not mutated. Re-applying the same events
// is a no-op (dedup by SourceEventID), and per-user counts are independent of
// event order; only LastSeenAt/FirstSeenAt take the max/min observed
// timestamp. Follow state and display name follow the newest observation.
func Merge(s Store, events []model.EngagementEvent) (Store, []model.EngagementEvent) {
	out := Store{Users: make(map[string]model.UserRecord, len(s.Users))}
	for id, rec := range s.Users {
		rec.Counts = cloneCounts(rec.Counts)
		rec.SeenEventIDs = append([]string(nil), rec.SeenEventIDs...)
		out.Users[id] = rec
	}

	seen := make(map[string]map[string]struct{}, len(out.Users))
	for id, rec := range out.Users {
		set := make(map[string]struct{}, len(rec.SeenEventIDs))
		for _, eid := range rec.SeenEventIDs {
			set[eid] = struct{}{}
		}
		seen[id] = set
	}

	var newly []model.EngagementEvent
	for _, e := range events {
		if e.ActorID == "" || e.SourceEventID == "" {
			continue
		}
		rec, ok := out.Users[e.ActorID]
		if !ok {
			rec = model.UserRecord{
				UserID:      e.ActorID,
				DisplayName: e.ActorName,
				Counts:      make(map[model.ActionKind]int),
				Following:   e.Following,
				FirstSeenAt: e.ObservedAt,
				LastSeenAt:  e.ObservedAt,
			}
			seen[e.ActorID] = make(map[string]struct{})
		}
		if _, dup := seen[e.ActorID][e.SourceEventID]; dup {
			continue
		}
		seen[e.ActorID][e.SourceEventID] = struct{}{}
		rec.SeenEventIDs = append(rec.SeenEventIDs, e.SourceEventID)
		rec.Counts[e.Kind]++
		if e.ObservedAt.Before(rec.FirstSeenAt) {
			rec.FirstSeenAt = e.ObservedAt
		}
		if !e.ObservedAt.Before(rec.LastSeenAt) {
			// Newest observation wins for mutable profile state.
			rec.LastSeenAt = e.ObservedAt
			rec.Following = e.Following
			if e.ActorName != "" {
				rec.DisplayName = e.ActorName
			}
		}
		out.Users[e.ActorID] = rec
		newly = append(newly, e)
	}
	return out, newly
}

// MarkCommented records the time a comment was staged for the user. An
// unknown user leaves the store unchanged.
func MarkCommented(s Store, userID string, at time.Time) Store {
	rec, ok := s.Users[userID]
	if !ok {
		return s
	}
	out := Store{Users: make(map[string]model.UserRecord, len(s.Users))}
	for id, r := range s.Users {
		out.Users[id] = r
	}
	t := at
	rec.LastCommentedAt = &t
	out.Users[userID] = rec
	return out
}

func cloneCounts(m map[model.ActionKind]int) map[model.ActionKind]int {
	out := make(map[model.ActionKind]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
