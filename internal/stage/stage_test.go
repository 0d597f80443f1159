package stage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"kudos/internal/browser"
	"kudos/internal/config"
	"kudos/internal/model"
	"kudos/internal/store"
	"kudos/internal/store/actionlog"
	"kudos/internal/suggest"
)

type fakeBox struct {
	text   string
	setErr error
}

func (b *fakeBox) SetText(ctx context.Context, text string) error {
	if b.setErr != nil {
		return b.setErr
	}
	b.text = text
	return nil
}

type fakeSurface struct {
	box    *fakeBox
	boxErr error
}

func (f *fakeSurface) Open(ctx context.Context) error     { return nil }
func (f *fakeSurface) LoadMore(ctx context.Context) error { return nil }

func (f *fakeSurface) ListEntries(ctx context.Context) ([]browser.Entry, error) {
	return nil, nil
}
func (f *fakeSurface) LocateCommentBox(ctx context.Context, userID string) (browser.CommentBox, error) {
	if f.boxErr != nil {
		return nil, f.boxErr
	}
	return f.box, nil
}

func seededStore(userID string, likes int) store.Store {
	s := store.Empty()
	s.Users[userID] = model.UserRecord{
		UserID:      userID,
		DisplayName: "Alice",
		Counts:      map[model.ActionKind]int{model.ActionLike: likes},
		FirstSeenAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		LastSeenAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	return s
}

func testTemplates() suggest.TemplateSet {
	return suggest.TemplateSet{Templates: []suggest.Template{
		{ID: "thanks", Fallback: true, Text: "{{.Name}}: thanks"},
	}}
}

func TestStageFillsBoxWithoutSubmitting(t *testing.T) {
	box := &fakeBox{}
	outcome, err := Stage(context.Background(), &fakeSurface{box: box}, "alice", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if outcome != model.Staged {
		t.Fatalf("outcome: %s", outcome)
	}
	if box.text != "hello" {
		t.Fatalf("box text: %q", box.text)
	}
}

func TestStageUserNotFound(t *testing.T) {
	outcome, err := Stage(context.Background(), &fakeSurface{boxErr: browser.ErrUserNotFound}, "ghost", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if outcome != model.UserNotFound {
		t.Fatalf("outcome: %s", outcome)
	}
}

func TestStageInputBlocked(t *testing.T) {
	outcome, _ := Stage(context.Background(), &fakeSurface{boxErr: browser.ErrInputBlocked}, "alice", "hello")
	if outcome != model.InputBlocked {
		t.Fatalf("locate block outcome: %s", outcome)
	}
	outcome, _ = Stage(context.Background(), &fakeSurface{box: &fakeBox{setErr: browser.ErrInputBlocked}}, "alice", "hello")
	if outcome != model.InputBlocked {
		t.Fatalf("settext block outcome: %s", outcome)
	}
}

func TestStageUnexpectedErrorPassesThrough(t *testing.T) {
	boom := errors.New("tab crashed")
	outcome, err := Stage(context.Background(), &fakeSurface{boxErr: boom}, "alice", "hello")
	if !errors.Is(err, boom) || outcome != "" {
		t.Fatalf("expected passthrough error, got %q %v", outcome, err)
	}
}

func TestServiceStagedRecordsAction(t *testing.T) {
	db, err := actionlog.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	box := &fakeBox{}
	svc := &Service{
		Surface:   &fakeSurface{box: box},
		Templates: testTemplates(),
		Log:       db,
		Limits:    config.StagingConfig{MaxPerHour: 5, MaxPerDay: 10},
	}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	st, outcome, err := svc.StageForUser(context.Background(), seededStore("alice", 2), "alice", now)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != model.Staged {
		t.Fatalf("outcome: %s", outcome)
	}
	if box.text != "Alice: thanks" {
		t.Fatalf("box text: %q", box.text)
	}
	rec := st.Users["alice"]
	if rec.LastCommentedAt == nil || !rec.LastCommentedAt.Equal(now) {
		t.Fatalf("LastCommentedAt not set: %+v", rec.LastCommentedAt)
	}
	n, err := db.CountActionsWithin(context.Background(), now.Add(-time.Minute), now.Add(time.Minute), "stage")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 logged action, got %d", n)
	}
}

func TestServiceUserNotFoundLeavesStoreUnchanged(t *testing.T) {
	svc := &Service{
		Surface:   &fakeSurface{boxErr: browser.ErrUserNotFound},
		Templates: testTemplates(),
	}
	before := seededStore("alice", 2)
	after, outcome, err := svc.StageForUser(context.Background(), before, "alice", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != model.UserNotFound {
		t.Fatalf("outcome: %s", outcome)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed on user_not_found")
	}
}

func TestServiceUnknownUserFails(t *testing.T) {
	svc := &Service{Surface: &fakeSurface{box: &fakeBox{}}, Templates: testTemplates()}
	_, _, err := svc.StageForUser(context.Background(), store.Empty(), "ghost", time.Now())
	if err == nil {
		t.Fatalf("expected error for user with no record")
	}
}

func TestServiceBudgetExhausted(t *testing.T) {
	db, err := actionlog.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := RecordStaged(context.Background(), db, "someone", now); err != nil {
		t.Fatal(err)
	}
	svc := &Service{
		Surface:   &fakeSurface{box: &fakeBox{}},
		Templates: testTemplates(),
		Log:       db,
		Limits:    config.StagingConfig{MaxPerHour: 1},
	}
	_, _, err = svc.StageForUser(context.Background(), seededStore("alice", 1), "alice", now.Add(5*time.Minute))
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
}

func TestShouldAllowStageRespectsBudgetsAndQuietHours(t *testing.T) {
	db, err := actionlog.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.StagingConfig{MaxPerHour: 2, MaxPerDay: 3, QuietHours: []int{3}}

	ok, err := ShouldAllowStage(ctx, db, cfg, now)
	if err != nil || !ok {
		t.Fatalf("expected allowed, got %v %v", ok, err)
	}
	ok, _ = ShouldAllowStage(ctx, db, cfg, time.Date(2026, 8, 1, 3, 30, 0, 0, time.UTC))
	if ok {
		t.Fatalf("expected blocked by quiet hour")
	}
	_ = RecordStaged(ctx, db, "a", now)
	_ = RecordStaged(ctx, db, "b", now.Add(5*time.Minute))
	ok, _ = ShouldAllowStage(ctx, db, cfg, now.Add(10*time.Minute))
	if ok {
		t.Fatalf("expected blocked by hourly budget")
	}
	_ = RecordStaged(ctx, db, "c", now.Add(65*time.Minute))
	ok, _ = ShouldAllowStage(ctx, db, cfg, now.Add(70*time.Minute))
	if ok {
		t.Fatalf("expected blocked by daily budget")
	}
}
