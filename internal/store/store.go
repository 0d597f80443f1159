// Package store persists engagement records as a whole-file JSON snapshot
// keyed by user id. The snapshot is the single source of truth for whether a
// scraped event has already been counted.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"kudos/internal/model"
)

// Store is the in-memory form of the snapshot. It is passed by value through
// Load -> Merge -> Save; no package-level state.
type Store struct {
	Users map[string]model.UserRecord
}

// Empty returns a store with no records.
func Empty() Store {
	return Store{Users: make(map[string]model.UserRecord)}
}

// Load reads the snapshot at path. A missing file is a first run, not an
// error, and yields an empty store.
func Load(path string) (Store, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return Store{}, err
	}
	users := make(map[string]model.UserRecord)
	if err := json.Unmarshal(b, &users); err != nil {
		return Store{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	for id, rec := range users {
		if rec.UserID == "" {
			rec.UserID = id
			users[id] = rec
		}
	}
	return Store{Users: users}, nil
}

// Save atomically replaces the snapshot at path: write to a temp file in the
// same directory, sync, then rename. A crash mid-write leaves the previous
// snapshot intact.
func Save(path string, s Store) error {
	if path == "" {
		return errors.New("empty snapshot path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	users := make(map[string]model.UserRecord, len(s.Users))
	for id, rec := range s.Users {
		rec.SeenEventIDs = append([]string(nil), rec.SeenEventIDs...)
		sort.Strings(rec.SeenEventIDs)
		users[id] = rec
	}
	b, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".kudos-snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Lock takes an advisory lock-file next to the snapshot so two processes
// cannot interleave load->save. Returns an unlock func. Single-writer usage
// is still the documented norm; this only catches accidents.
func Lock(path string) (func(), error) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("snapshot locked by another process (%s)", lockPath)
		}
		return nil, err
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Close()
	return func() { _ = os.Remove(lockPath) }, nil
}
