package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultVersion      = "1.0"
	DefaultActor        = "webapp"
	DefaultDatabaseName = "dealerops.db"
	DefaultDebounceMS   = 400
	DefaultPollSchedule = "@every 5s"
	DefaultLogLevel     = "info"
	DefaultEmailJSURL   = "https://api.emailjs.com/api/v1.0/email/send"
)

// Environment overrides
const (
	EnvDatabase          = "DEALEROPS_DB"
	EnvRedisURL          = "DEALEROPS_REDIS_URL"
	EnvEmailJSPrivateKey = "DEALEROPS_EMAILJS_PRIVATE_KEY"
	EnvEmailJSPublicKey  = "DEALEROPS_EMAILJS_PUBLIC_KEY"
	EnvLogLevel          = "DEALEROPS_LOG_LEVEL"
	EnvDebounceMS        = "DEALEROPS_DEBOUNCE_MS"
)

// EmailJS holds the outbound report email settings.
type EmailJS struct {
	Endpoint   string `json:"endpoint,omitempty"`
	ServiceID  string `json:"service_id,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
	PublicKey  string `json:"public_key,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`
}

// Enabled reports whether enough is configured to send mail.
func (e EmailJS) Enabled() bool {
	return e.ServiceID != "" && e.TemplateID != "" && e.PublicKey != ""
}

// Config represents the dealerops configuration
type Config struct {
	Version      string  `json:"version"`
	Actor        string  `json:"actor,omitempty"`         // recorded as OnHoldBy and audit actor
	DatabasePath string  `json:"database_path,omitempty"` // relative paths resolve against the config dir
	DebounceMS   int     `json:"debounce_ms,omitempty"`
	PollSchedule string  `json:"poll_schedule,omitempty"` // cron spec for the external-change poller
	RedisURL     string  `json:"redis_url,omitempty"`
	LogLevel     string  `json:"log_level,omitempty"`
	EmailJS      EmailJS `json:"emailjs"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:      DefaultVersion,
		Actor:        DefaultActor,
		DatabasePath: DefaultDatabaseName,
		DebounceMS:   DefaultDebounceMS,
		PollSchedule: DefaultPollSchedule,
		LogLevel:     DefaultLogLevel,
		EmailJS:      EmailJS{Endpoint: DefaultEmailJSURL},
	}
}

// Path returns the config file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, ".dealerops", "config.json")
}

// LoadConfig reads .dealerops/config.json from the specified directory.
// Missing fields take their defaults.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillDefaults()

	return cfg, nil
}

// LoadOrDefault reads the config from dir, falling back to Default when none exists.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := LoadConfig(dir)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Dir(Path(dir))
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create .dealerops dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadEnv loads dir/.env into the process environment. A missing file is not an error.
// Variables already set in the environment win.
func LoadEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with DEALEROPS_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv(EnvEmailJSPrivateKey); v != "" {
		c.EmailJS.PrivateKey = v
	}
	if v := os.Getenv(EnvEmailJSPublicKey); v != "" {
		c.EmailJS.PublicKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvDebounceMS); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.DebounceMS = ms
		}
	}
}

// Debounce returns the stock-sheet autosave quiet period.
func (c *Config) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ResolveDatabasePath returns DatabasePath made absolute against dir.
func (c *Config) ResolveDatabasePath(dir string) string {
	p := c.DatabasePath
	if p == "" {
		p = DefaultDatabaseName
	}
	if p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, ".dealerops", p)
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Actor == "" {
		c.Actor = d.Actor
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = d.DebounceMS
	}
	if c.PollSchedule == "" {
		c.PollSchedule = d.PollSchedule
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.EmailJS.Endpoint == "" {
		c.EmailJS.Endpoint = d.EmailJS.Endpoint
	}
}
