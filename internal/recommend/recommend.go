// Package recommend orders engagement records for operator review: who to
// thank first, and why.
package recommend

import (
	"sort"
	"time"

	"kudos/internal/model"
	"kudos/internal/store"
)

// UserRecommendation bundles a record with its thank-you category.
type UserRecommendation struct {
	Record   model.UserRecord
	Category model.Category
}

// Options narrows the candidate set before ranking.
type Options struct {
	// Skip users commented within this window; zero keeps everyone
	CommentCooldown time.Duration
	// Drop users with no countable engagement
	RequireEngagement bool
	// Cap the list; zero means no cap
	Limit int
}

// RankUsers returns records ordered by staging priority. The ordering is
// stable across runs so the operator sees the same list until the store
// changes.
func RankUsers(st store.Store, now time.Time, opts Options) []UserRecommendation {
	recs := make([]UserRecommendation, 0, len(st.Users))
	for _, r := range st.Users {
		if opts.RequireEngagement && r.TotalCount() == 0 {
			continue
		}
		if opts.CommentCooldown > 0 && r.LastCommentedAt != nil && now.Sub(*r.LastCommentedAt) < opts.CommentCooldown {
			continue
		}
		recs = append(recs, UserRecommendation{Record: r, Category: model.Categorize(r)})
	}
	sort.Slice(recs, func(i, j int) bool { return model.PriorityLess(recs[i].Record, recs[j].Record) })
	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	return recs
}
