package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kudos/internal/model"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Users) != 0 {
		t.Fatalf("expected empty store, got %d users", len(s.Users))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s, _ := Merge(Empty(), []model.EngagementEvent{
		evt("a", "2", model.ActionLike, now),
		evt("a", "1", model.ActionOther, now.Add(time.Minute)),
	})
	if err := Save(path, s); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	rec := got.Users["a"]
	if rec.Count(model.ActionLike) != 1 || rec.Count(model.ActionOther) != 1 {
		t.Fatalf("counts lost in round trip: %+v", rec.Counts)
	}
	if len(rec.SeenEventIDs) != 2 || rec.SeenEventIDs[0] != "1" {
		t.Fatalf("expected sorted seen ids, got %v", rec.SeenEventIDs)
	}
	if !rec.LastSeenAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("lastSeenAt lost: %v", rec.LastSeenAt)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	if err := Save(path, Empty()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".kudos-snapshot-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first, _ := Merge(Empty(), []model.EngagementEvent{evt("a", "1", model.ActionLike, now)})
	if err := Save(path, first); err != nil {
		t.Fatal(err)
	}
	second, _ := Merge(first, []model.EngagementEvent{evt("b", "2", model.ActionFollow, now)})
	if err := Save(path, second); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Users) != 2 {
		t.Fatalf("expected 2 users after replace, got %d", len(got.Users))
	}
}

func TestLockExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	unlock, err := Lock(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Lock(path); err == nil {
		t.Fatalf("expected second lock to fail")
	}
	unlock()
	unlock2, err := Lock(path)
	if err != nil {
		t.Fatalf("lock after unlock failed: %v", err)
	}
	unlock2()
}

func TestLoadCorruptSnapshotFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
