package browser

import (
	"os"
	"strconv"

	"golang.org/x/time/rate"
)

// newNavLimiter paces navigations and clicks so a scan reads like a human
// browsing, with env overrides like the rest of the tool.
func newNavLimiter() *rate.Limiter {
	rps := 1.0
	burst := 2
	if v := os.Getenv("KUDOS_NAV_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 { rps = f }
	}
	if v := os.Getenv("KUDOS_NAV_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 { burst = n }
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
