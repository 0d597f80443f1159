// Package browser attaches to an already-running Chrome over its remote
// debugging endpoint and exposes the notifications page as a small capability
// surface, so the pipeline logic can be tested against fakes.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// Entry is one raw notification entry as rendered on the page. Field values
// are best-effort; the extractor decides what parses into an event.
type Entry struct {
	ActorID    string
	ActorName  string
	ActionText string
	TimeTitle  string // raw timestamp from the entry's title attribute
	Following  bool
}

// Surface is the capability interface over the live notifications page.
type Surface interface {
	// Open navigates to the notifications surface and waits for it to settle.
	Open(ctx context.Context) error
	// ListEntries returns the entries currently rendered.
	ListEntries(ctx context.Context) ([]Entry, error)
	// LoadMore scrolls to trigger lazy loading of older entries.
	LoadMore(ctx context.Context) error
	// LocateCommentBox finds the comment input associated with the user's
	// activity. Returns ErrUserNotFound when the user's entry is not present
	// in current page state, ErrInputBlocked when no usable input exists.
	LocateCommentBox(ctx context.Context, userID string) (CommentBox, error)
}

// CommentBox is a located comment input. SetText populates it without
// submitting; submission stays a human action.
type CommentBox interface {
	SetText(ctx context.Context, text string) error
}

// ErrUserNotFound means the target user's entry is absent from the page.
var ErrUserNotFound = errors.New("user entry not present on page")

// ErrInputBlocked means the comment input exists but is not interactable.
var ErrInputBlocked = errors.New("comment box not interactable")

// ConnectionError wraps failures to reach or attach to the debug endpoint.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to browser at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
