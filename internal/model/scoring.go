package model

// Category buckets a user's accumulated engagement the way the operator
// thinks about it when choosing who to thank first.
type Category string

const (
	CategoryManyLikes        Category = "many-likes"
	CategoryLikeNotFollowing Category = "like-not-following"
	CategoryLikeAndCollect   Category = "like-and-collect"
	CategoryLike             Category = "like"
	CategoryOther            Category = "misc"
)

// Categorize derives the thank-you category from a record.
// Order matters: the most gratitude-worthy bucket wins.
func Categorize(r UserRecord) Category {
	likes := r.Count(ActionLike)
	collects := r.Count(ActionOther)
	switch {
	case likes >= 2:
		return CategoryManyLikes
	case likes > 0 && !r.Following:
		return CategoryLikeNotFollowing
	case likes > 0 && collects > 0:
		return CategoryLikeAndCollect
	case likes > 0:
		return CategoryLike
	default:
		return CategoryOther
	}
}

// PriorityLess orders records for operator review: more likes first, users we
// do not yet follow before users we do, like+collect pairs boosted, and user
// id as the final tie-break so the ordering is stable across runs.
func PriorityLess(a, b UserRecord) bool {
	if la, lb := a.Count(ActionLike), b.Count(ActionLike); la != lb {
		return la > lb
	}
	if a.Following != b.Following {
		return !a.Following
	}
	pa := a.Count(ActionLike) > 0 && a.Count(ActionOther) > 0
	pb := b.Count(ActionLike) > 0 && b.Count(ActionOther) > 0
	if pa != pb {
		return pa
	}
	return a.UserID < b.UserID
}
