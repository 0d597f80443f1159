package browser

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/time/rate"

	"kudos/internal/logging"
)

// Rakuten ROOM selectors. Hashed CSS-module classes are matched by prefix so
// a rebuild of the site's stylesheet does not break us.
const (
	itemsURL = "https://room.rakuten.co.jp/items"
	roomHost = "room.rakuten.co.jp"

	selActivityTitle = `div.title[ng-show='notifications.activityNotifications.length > 0']`
	selEntry         = `li[ng-repeat='notification in notifications.activityNotifications']`
	selEntryName     = `span.notice-name span.strong`
	selEntryAvatar   = `div.left-img img`
	selEntryAction   = `div.right-text > p`
	selEntryTime     = `span.notice-time`
	selEntryFollow   = `span.follow`
	selAvatarBox     = `div.left-img`
	selPostCard      = `div[class*="container"] a[class*="link-image"]`
	selCommentOpen   = `div[class*="pointer"]`
	selCommentBox    = `textarea[placeholder="コメントを書いてください"]`

	noProfileImage = "img_noprofile.gif"
	notFollowing   = "未フォロー"
	noticesLink    = "お知らせ"
	settleDelay    = 1500 * time.Millisecond
)

// actorIDPattern pulls the user id out of the profile image URL
// (last path segment, extension and query stripped).
var actorIDPattern = regexp.MustCompile(`/([^/]+?)(?:\.\w+)?(?:\?.*)?$`)

// RoomSurface drives the Rakuten ROOM notifications page through a Session.
type RoomSurface struct {
	sess    *Session
	limiter *rate.Limiter
}

// NewRoomSurface wraps an attached session.
func NewRoomSurface(sess *Session) *RoomSurface {
	return &RoomSurface{sess: sess, limiter: newNavLimiter()}
}

// RoomHost is the substring used to find an already-open ROOM tab.
func RoomHost() string { return roomHost }

func (s *RoomSurface) page(ctx context.Context) *rod.Page {
	return s.sess.Page().Context(ctx).Timeout(s.sess.cfg.NavigationTimeout())
}

// Open navigates to the items page, follows the notices link, and waits for
// the activity section to attach.
func (s *RoomSurface) Open(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	page := s.page(ctx)
	if err := page.Navigate(itemsURL); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	link, err := page.ElementR("a", noticesLink)
	if err != nil {
		return err
	}
	if err := link.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	if _, err := page.Element(selActivityTitle); err != nil {
		return err
	}
	return nil
}

// ListEntries reads the entries currently rendered. Sub-element lookups are
// best-effort; entries missing required fields are returned as-is and the
// extractor decides whether they parse.
func (s *RoomSurface) ListEntries(ctx context.Context) ([]Entry, error) {
	page := s.page(ctx)
	els, err := page.Sleeper(rod.NotFoundSleeper).Elements(selEntry)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(els))
	for _, el := range els {
		quick := el.Sleeper(rod.NotFoundSleeper)
		var e Entry
		if name, err := quick.Element(selEntryName); err == nil {
			e.ActorName, _ = name.Text()
			e.ActorName = strings.TrimSpace(e.ActorName)
		}
		if img, err := quick.Element(selEntryAvatar); err == nil {
			if src, err := img.Attribute("src"); err == nil && src != nil {
				if strings.Contains(*src, noProfileImage) {
					// Accounts without a profile image are out of scope.
					continue
				}
				e.ActorID = ActorIDFromImageURL(*src)
			}
		}
		if p, err := quick.Element(selEntryAction); err == nil {
			e.ActionText, _ = p.Text()
		}
		if ts, err := quick.Element(selEntryTime); err == nil {
			if title, err := ts.Attribute("title"); err == nil && title != nil {
				e.TimeTitle = *title
			}
		}
		e.Following = true
		if badge, err := quick.Element(selEntryFollow); err == nil {
			if txt, err := badge.Text(); err == nil && strings.Contains(txt, notFollowing) {
				e.Following = false
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadMore scrolls to the bottom so the page lazy-loads older entries.
func (s *RoomSurface) LoadMore(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	page := s.page(ctx)
	if _, err := page.Evaluate(rod.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(settleDelay):
	}
	return nil
}

// LocateCommentBox walks the original posting flow: find the user's entry,
// open their profile via the avatar, open the first post, open the comment
// form, and hand back the textarea.
func (s *RoomSurface) LocateCommentBox(ctx context.Context, userID string) (CommentBox, error) {
	page := s.page(ctx)
	els, err := page.Sleeper(rod.NotFoundSleeper).Elements(selEntry)
	if err != nil {
		return nil, ErrUserNotFound
	}
	var target *rod.Element
	for _, el := range els {
		img, err := el.Sleeper(rod.NotFoundSleeper).Element(selEntryAvatar)
		if err != nil {
			continue
		}
		src, err := img.Attribute("src")
		if err != nil || src == nil {
			continue
		}
		if ActorIDFromImageURL(*src) == userID {
			target = el
			break
		}
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	avatar, err := target.Element(selAvatarBox)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if err := avatar.ScrollIntoView(); err != nil {
		logging.Info("stage_scroll_failed", map[string]any{"user": userID, "error": err.Error()})
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := avatar.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, ErrInputBlocked
	}
	if err := page.WaitLoad(); err != nil {
		return nil, ErrInputBlocked
	}

	card, err := page.Element(selPostCard)
	if err != nil {
		return nil, ErrInputBlocked
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := card.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, ErrInputBlocked
	}
	if err := page.WaitLoad(); err != nil {
		return nil, ErrInputBlocked
	}

	open, err := page.ElementR(selCommentOpen, "コメント")
	if err != nil {
		return nil, ErrInputBlocked
	}
	if err := open.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, ErrInputBlocked
	}
	box, err := page.Element(selCommentBox)
	if err != nil {
		return nil, ErrInputBlocked
	}
	return &rodCommentBox{el: box}, nil
}

// ActorIDFromImageURL derives the stable user id from a profile image URL.
func ActorIDFromImageURL(src string) string {
	m := actorIDPattern.FindStringSubmatch(src)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

type rodCommentBox struct {
	el *rod.Element
}

// SetText fills the textarea without submitting. The operator reviews and
// sends the comment manually.
func (b *rodCommentBox) SetText(ctx context.Context, text string) error {
	if _, err := b.el.Interactable(); err != nil {
		return ErrInputBlocked
	}
	if err := b.el.SelectAllText(); err != nil {
		return ErrInputBlocked
	}
	if err := b.el.Input(text); err != nil {
		return ErrInputBlocked
	}
	return nil
}
