package actionlog

import (
	"context"
	"testing"
	"time"
)

func TestCursorsAndActions(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil { t.Fatal(err) }
	defer db.Close()
	ctx := context.Background()
	if err := db.SaveCursor(ctx, "scan:last_ts", "123"); err != nil { t.Fatal(err) }
	v, err := db.LoadCursor(ctx, "scan:last_ts")
	if err != nil || v != "123" { t.Fatalf("cursor mismatch: %v %s", err, v) }
	if err := db.SaveCursor(ctx, "scan:last_ts", "456"); err != nil { t.Fatal(err) }
	if v, _ := db.LoadCursor(ctx, "scan:last_ts"); v != "456" { t.Fatalf("cursor not upserted: %s", v) }
	now := time.Now().UTC()
	if err := db.PutAction(ctx, now, "stage", "user-a"); err != nil { t.Fatal(err) }
	n, err := db.CountActionsWithin(ctx, now.Add(-time.Hour), now.Add(time.Hour), "stage")
	if err != nil || n != 1 { t.Fatalf("action count mismatch: %v %d", err, n) }
	acts, err := db.LoadActionsRange(ctx, now.Add(-time.Hour), now.Add(time.Hour), "")
	if err != nil || len(acts) != 1 || acts[0].UserID != "user-a" { t.Fatalf("range mismatch: %v %+v", err, acts) }
}

func TestLoadCursorUnset(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil { t.Fatal(err) }
	defer db.Close()
	if _, err := db.LoadCursor(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unset cursor")
	}
}
