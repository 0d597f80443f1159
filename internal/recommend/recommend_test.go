package recommend

import (
	"testing"
	"time"

	"kudos/internal/model"
	"kudos/internal/store"
)

func rec(id string, likes, collects int, following bool) model.UserRecord {
	return model.UserRecord{
		UserID:    id,
		Counts:    map[model.ActionKind]int{model.ActionLike: likes, model.ActionOther: collects},
		Following: following,
	}
}

func TestRankUsersOrdering(t *testing.T) {
	st := store.Empty()
	st.Users["casual"] = rec("casual", 1, 0, true)
	st.Users["superfan"] = rec("superfan", 5, 0, true)
	st.Users["newfan"] = rec("newfan", 1, 0, false)
	now := time.Now()

	out := RankUsers(st, now, Options{})
	if len(out) != 3 {
		t.Fatalf("got %d recommendations", len(out))
	}
	if out[0].Record.UserID != "superfan" {
		t.Fatalf("expected superfan first, got %s", out[0].Record.UserID)
	}
	if out[1].Record.UserID != "newfan" {
		t.Fatalf("expected not-following before following at equal likes, got %s", out[1].Record.UserID)
	}
	if out[0].Category != model.CategoryManyLikes {
		t.Fatalf("superfan category: %s", out[0].Category)
	}
}

func TestRankUsersStable(t *testing.T) {
	st := store.Empty()
	for _, id := range []string{"b", "a", "c"} {
		st.Users[id] = rec(id, 1, 0, true)
	}
	now := time.Now()
	first := RankUsers(st, now, Options{})
	for i := 0; i < 5; i++ {
		again := RankUsers(st, now, Options{})
		for j := range first {
			if again[j].Record.UserID != first[j].Record.UserID {
				t.Fatalf("ordering not stable at %d: %s vs %s", j, again[j].Record.UserID, first[j].Record.UserID)
			}
		}
	}
	if first[0].Record.UserID != "a" {
		t.Fatalf("expected id tie-break, got %s first", first[0].Record.UserID)
	}
}

func TestRankUsersCooldownAndLimit(t *testing.T) {
	st := store.Empty()
	now := time.Now()
	recent := now.Add(-time.Hour)
	cooled := rec("cooled", 3, 0, true)
	cooled.LastCommentedAt = &recent
	st.Users["cooled"] = cooled
	st.Users["fresh"] = rec("fresh", 2, 0, true)
	st.Users["quiet"] = rec("quiet", 0, 0, true)

	out := RankUsers(st, now, Options{CommentCooldown: 24 * time.Hour, RequireEngagement: true, Limit: 5})
	if len(out) != 1 || out[0].Record.UserID != "fresh" {
		t.Fatalf("expected only fresh, got %+v", out)
	}
}
