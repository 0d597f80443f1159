// Package stage drives the last mile: putting a rendered comment into the
// page's comment box without submitting it. The operator reviews and sends.
package stage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kudos/internal/browser"
	"kudos/internal/config"
	"kudos/internal/logging"
	"kudos/internal/metrics"
	"kudos/internal/model"
	"kudos/internal/store"
	"kudos/internal/store/actionlog"
	"kudos/internal/suggest"
)

// Stage locates the user's comment box and fills it with text. One attempt,
// no retries: a blocked input means the page changed and a human should look.
func Stage(ctx context.Context, surface browser.Surface, userID, text string) (model.StagedOutcome, error) {
	box, err := surface.LocateCommentBox(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, browser.ErrUserNotFound):
			return model.UserNotFound, nil
		case errors.Is(err, browser.ErrInputBlocked):
			return model.InputBlocked, nil
		default:
			return "", err
		}
	}
	if err := box.SetText(ctx, text); err != nil {
		if errors.Is(err, browser.ErrInputBlocked) {
			return model.InputBlocked, nil
		}
		return "", err
	}
	return model.Staged, nil
}

// Service stages a comment for a user from their engagement record:
// select a template, render it, optionally polish, fill the box, and
// record the action when it lands.
type Service struct {
	Surface   browser.Surface
	Templates suggest.TemplateSet
	Log       *actionlog.DB
	Limits    config.StagingConfig
	LLM       config.LLMConfig
}

// StageForUser runs the full flow against one record. The returned store is
// updated only on a Staged outcome; UserNotFound and InputBlocked leave it
// untouched.
func (s *Service) StageForUser(ctx context.Context, st store.Store, userID string, now time.Time) (store.Store, model.StagedOutcome, error) {
	rec, ok := st.Users[userID]
	if !ok {
		return st, "", fmt.Errorf("no engagement record for %s", userID)
	}
	if s.Log != nil {
		allowed, err := ShouldAllowStage(ctx, s.Log, s.Limits, now)
		if err != nil {
			return st, "", err
		}
		if !allowed {
			return st, "", ErrBudgetExhausted
		}
	}

	sugg, err := suggest.Suggest(s.Templates, rec)
	if err != nil {
		return st, "", err
	}
	text, err := suggest.PolishWithLLM(ctx, s.LLM, rec.DisplayName, sugg.Text)
	if err != nil {
		logging.Info("llm_polish_skipped", map[string]any{"user": userID, "error": err.Error()})
		text = sugg.Text
	}

	outcome, err := Stage(ctx, s.Surface, userID, text)
	if err != nil {
		return st, "", err
	}
	metrics.IncStagedOutcome(string(outcome))
	logging.Info("stage_result", map[string]any{"user": userID, "template": sugg.TemplateID, "outcome": string(outcome)})
	if outcome != model.Staged {
		return st, outcome, nil
	}

	if s.Log != nil {
		if err := RecordStaged(ctx, s.Log, userID, now); err != nil {
			return st, outcome, err
		}
	}
	return store.MarkCommented(st, userID, now), outcome, nil
}
