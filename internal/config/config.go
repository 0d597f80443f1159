package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures the browser attachment, scan behavior, storage paths,
// staging limits, and the optional LLM polish step.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Scan    ScanConfig    `yaml:"scan"`
	Storage StorageConfig `yaml:"storage"`
	Staging StagingConfig `yaml:"staging"`
	LLM     LLMConfig     `yaml:"llm"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type BrowserConfig struct {
	// Remote-debugging endpoint of the operator's already-running Chrome.
	// If empty, read from env KUDOS_DEBUG_URL.
	DebugURL            string `yaml:"debugUrl"`
	ConnectAttempts     int    `yaml:"connectAttempts"`
	ConnectBackoffMs    int    `yaml:"connectBackoffMs"`
	NavigationTimeoutMs int    `yaml:"navigationTimeoutMs"`
}

type ScanConfig struct {
	// Max scroll pages per pass
	MaxPages int `yaml:"maxPages"`
	// Loop interval for `scan -loop`
	IntervalMinutes int `yaml:"intervalMinutes"`
}

type StorageConfig struct {
	// JSON snapshot of user engagement records
	SnapshotPath string `yaml:"snapshotPath"`
	// SQLite action log (staged comments, cursors, budgets)
	ActionLogPath string `yaml:"actionLogPath"`
	// YAML comment template file
	TemplatesPath string `yaml:"templatesPath"`
}

type StagingConfig struct {
	// Max staged comments per hour and per day
	MaxPerHour int `yaml:"maxPerHour"`
	MaxPerDay  int `yaml:"maxPerDay"`
	// Quiet hours (local) when staging is skipped
	QuietHours []int `yaml:"quietHours"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "none"
	Model    string `yaml:"model"`
	// If empty, read from env OPENAI_API_KEY
	APIKey string `yaml:"apiKey"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Browser: BrowserConfig{
			DebugURL:            "http://localhost:9222",
			ConnectAttempts:     5,
			ConnectBackoffMs:    3000,
			NavigationTimeoutMs: 30000,
		},
		Scan:    ScanConfig{MaxPages: 5, IntervalMinutes: 30},
		Storage: StorageConfig{SnapshotPath: "./data/users.json", ActionLogPath: "./data/kudos.db", TemplatesPath: "./templates.yaml"},
		Staging: StagingConfig{MaxPerHour: 6, MaxPerDay: 30, QuietHours: []int{0, 1, 2, 3, 4, 5}},
		LLM:     LLMConfig{Provider: "none", Model: "gpt-4o-mini", APIKey: ""},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("KUDOS_DEBUG_URL"); v != "" {
		c.Browser.DebugURL = v
	}
	if v := os.Getenv("KUDOS_SNAPSHOT_PATH"); v != "" {
		c.Storage.SnapshotPath = v
	}
	if v := os.Getenv("KUDOS_ACTION_LOG"); v != "" {
		c.Storage.ActionLogPath = v
	}
	if v := os.Getenv("KUDOS_TEMPLATES"); v != "" {
		c.Storage.TemplatesPath = v
	}
	if v := os.Getenv("KUDOS_SCAN_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scan.MaxPages = n
		}
	}
	if c.LLM.APIKey == "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
