package browser

import (
	"context"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"kudos/internal/logging"
)

// Config holds connection settings for the debug endpoint. The browser
// process itself is started by the operator; we only attach.
type Config struct {
	DebugURL            string
	ConnectAttempts     int
	ConnectBackoffMs    int
	NavigationTimeoutMs int
}

func (c Config) attempts() int {
	if c.ConnectAttempts <= 0 {
		return 5
	}
	return c.ConnectAttempts
}

func (c Config) backoff() time.Duration {
	if c.ConnectBackoffMs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.ConnectBackoffMs) * time.Millisecond
}

// NavigationTimeout returns the per-navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// Session is an attached tab on an already-running browser.
type Session struct {
	browser  *rod.Browser
	page     *rod.Page
	ownsPage bool
	cfg      Config
}

// Connect attaches to the remote-debugging endpoint and returns a session
// bound to an open tab, opening a new one when no suitable tab exists.
// It never launches a browser and never closes tabs it did not open.
func Connect(ctx context.Context, cfg Config, tabURLSubstring string) (*Session, error) {
	controlURL, err := launcher.ResolveURL(cfg.DebugURL)
	if err != nil {
		return nil, &ConnectionError{Endpoint: cfg.DebugURL, Err: err}
	}

	var b *rod.Browser
	attempts := cfg.attempts()
	for i := 0; i < attempts; i++ {
		b = rod.New().ControlURL(controlURL).Context(ctx)
		if err = b.Connect(); err == nil {
			break
		}
		logging.Info("browser_connect_retry", map[string]any{"attempt": i + 1, "of": attempts, "error": err.Error()})
		select {
		case <-ctx.Done():
			return nil, &ConnectionError{Endpoint: cfg.DebugURL, Err: ctx.Err()}
		case <-time.After(cfg.backoff()):
		}
	}
	if err != nil {
		return nil, &ConnectionError{Endpoint: cfg.DebugURL, Err: err}
	}

	page, owns, err := pickPage(b, tabURLSubstring)
	if err != nil {
		return nil, &ConnectionError{Endpoint: cfg.DebugURL, Err: err}
	}
	return &Session{browser: b, page: page, ownsPage: owns, cfg: cfg}, nil
}

func pickPage(b *rod.Browser, urlSubstring string) (*rod.Page, bool, error) {
	pages, err := b.Pages()
	if err != nil {
		return nil, false, err
	}
	if urlSubstring != "" {
		for _, p := range pages {
			info, err := p.Info()
			if err != nil {
				continue
			}
			if strings.Contains(info.URL, urlSubstring) {
				return p, false, nil
			}
		}
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, false, err
	}
	return page, true, nil
}

// Page returns the attached tab.
func (s *Session) Page() *rod.Page { return s.page }

// Close releases the tab if we opened it. The browser process and any
// pre-existing tabs are left alone.
func (s *Session) Close() error {
	if s.ownsPage && s.page != nil {
		return s.page.Close()
	}
	return nil
}
