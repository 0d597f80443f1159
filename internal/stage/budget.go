package stage

import (
	"context"
	"errors"
	"time"

	"kudos/internal/config"
	"kudos/internal/store/actionlog"
)

// ErrBudgetExhausted means the hourly or daily staging budget is spent, or
// the current hour is quiet.
var ErrBudgetExhausted = errors.New("staging budget exhausted")

const actionStage = "stage"

// ShouldAllowStage checks quiet hours and hourly/daily budgets before staging.
func ShouldAllowStage(ctx context.Context, db *actionlog.DB, cfg config.StagingConfig, now time.Time) (bool, error) {
	for _, h := range cfg.QuietHours {
		if now.Hour() == h {
			return false, nil
		}
	}
	startHour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	startDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	hourCount, err := db.CountActionsWithin(ctx, startHour, startHour.Add(time.Hour), actionStage)
	if err != nil {
		return false, err
	}
	dayCount, err := db.CountActionsWithin(ctx, startDay, startDay.Add(24*time.Hour), actionStage)
	if err != nil {
		return false, err
	}
	if cfg.MaxPerHour > 0 && hourCount >= cfg.MaxPerHour {
		return false, nil
	}
	if cfg.MaxPerDay > 0 && dayCount >= cfg.MaxPerDay {
		return false, nil
	}
	return true, nil
}

// RecordStaged logs a staged comment against the budget.
func RecordStaged(ctx context.Context, db *actionlog.DB, userID string, now time.Time) error {
	return db.PutAction(ctx, now, actionStage, userID)
}
