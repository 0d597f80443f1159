package config

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "kudos.yaml")
	cfg := Default()
	cfg.Browser.DebugURL = "http://localhost:9333"
	cfg.Staging.MaxPerDay = 12
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Browser.DebugURL != "http://localhost:9333" {
		t.Fatalf("debug url: %s", got.Browser.DebugURL)
	}
	if got.Staging.MaxPerDay != 12 {
		t.Fatalf("max per day: %d", got.Staging.MaxPerDay)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("KUDOS_DEBUG_URL", "http://localhost:9444")
	cfg := Default()
	cfg.ResolveEnv()
	if cfg.Browser.DebugURL != "http://localhost:9444" {
		t.Fatalf("env override not applied: %s", cfg.Browser.DebugURL)
	}
}
