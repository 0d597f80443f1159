package model

import (
	"strings"
	"time"
)

// ActionKind classifies a single engagement action seen on the notifications page.
type ActionKind string

const (
	ActionLike    ActionKind = "like"
	ActionFollow  ActionKind = "follow"
	ActionComment ActionKind = "comment"
	// ActionOther covers actions we track but do not distinguish further,
	// e.g. Rakuten ROOM's "collect" ("コレ！しました").
	ActionOther ActionKind = "other"
)

// Kinds lists all action kinds in a fixed order.
func Kinds() []ActionKind {
	return []ActionKind{ActionLike, ActionFollow, ActionComment, ActionOther}
}

// KindFromText maps a notification's action text to an ActionKind.
// Unrecognized phrasings count as ActionOther rather than being dropped.
func KindFromText(text string) ActionKind {
	switch {
	case strings.Contains(text, "いいねしました") || strings.Contains(text, "liked"):
		return ActionLike
	case strings.Contains(text, "フォローしました") || strings.Contains(text, "followed"):
		return ActionFollow
	case strings.Contains(text, "コメントしました") || strings.Contains(text, "commented"):
		return ActionComment
	default:
		return ActionOther
	}
}

// EngagementEvent is one observed engagement action by one user.
// Created per extraction pass and discarded after merge; only SourceEventID
// survives inside the user's record for deduplication.
type EngagementEvent struct {
	ActorID       string
	ActorName     string
	Kind          ActionKind
	TargetID      string // empty when the notification carries no target
	ObservedAt    time.Time
	SourceEventID string
	Following     bool // whether we already follow the actor, as shown on the entry
}

// UserRecord accumulates engagement history for one user across runs.
// Records are created on first sighting and only ever updated, never deleted.
type UserRecord struct {
	UserID          string             `json:"user_id"`
	DisplayName     string             `json:"display_name"`
	Counts          map[ActionKind]int `json:"counts"`
	Following       bool               `json:"following"`
	FirstSeenAt     time.Time          `json:"first_seen_at"`
	LastSeenAt      time.Time          `json:"last_seen_at"`
	LastCommentedAt *time.Time         `json:"last_commented_at,omitempty"`
	SeenEventIDs    []string           `json:"seen_event_ids"`
}

// Count returns the count for one action kind.
func (r UserRecord) Count(k ActionKind) int {
	if r.Counts == nil {
		return 0
	}
	return r.Counts[k]
}

// TotalCount sums all action counts.
func (r UserRecord) TotalCount() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// HasSeen reports whether the event id is already counted in this record.
func (r UserRecord) HasSeen(sourceEventID string) bool {
	for _, id := range r.SeenEventIDs {
		if id == sourceEventID {
			return true
		}
	}
	return false
}

// StagingRequest carries a rendered comment to the staging driver.
type StagingRequest struct {
	UserID       string
	RenderedText string
}

// StagedOutcome is the result of one staging attempt.
type StagedOutcome string

const (
	Staged       StagedOutcome = "staged"
	UserNotFound StagedOutcome = "user_not_found"
	InputBlocked StagedOutcome = "input_blocked"
)
