// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Tasks         TasksConfig         `yaml:"tasks"`
	Store         StoreConfig         `yaml:"store"`
	Browser       BrowserConfig       `yaml:"browser"`
	Resolver      ResolverConfig      `yaml:"resolver"`
	Reconciler    ReconcilerConfig    `yaml:"reconciler"`
	Server        ServerConfig        `yaml:"server"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// PathsConfig locates the data files the pipeline reads and writes.
type PathsConfig struct {
	Catalog        string `yaml:"catalog"`
	UnavailableLog string `yaml:"unavailable_log"`
	TokenFile      string `yaml:"token_file"`
}

// TasksConfig defines the to-do list integration.
type TasksConfig struct {
	ListName     string          `yaml:"list_name"`
	MoveToList   string          `yaml:"move_to_list"`
	MarkComplete bool            `yaml:"mark_complete"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines tasks API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// StoreConfig defines the retailer account. Credentials normally arrive
// through ${HYVEE_EMAIL}/${HYVEE_PASSWORD} expansion.
type StoreConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// BrowserConfig defines the browser automation settings.
type BrowserConfig struct {
	Bin         string        `yaml:"bin"`
	Headless    bool          `yaml:"headless"`
	NavTimeout  time.Duration `yaml:"nav_timeout"`
	StepDelay   time.Duration `yaml:"step_delay"`
	LoginSettle time.Duration `yaml:"login_settle"`
	ResultLimit int           `yaml:"result_limit"`
	UserAgent   string        `yaml:"user_agent"`
}

// ResolverConfig defines fuzzy suggestion behavior.
type ResolverConfig struct {
	TopN          int     `yaml:"top_n"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// ReconcilerConfig defines cart reconciliation behavior.
type ReconcilerConfig struct {
	MaxAttempts       int  `yaml:"max_attempts"`
	IgnoreUnavailable bool `yaml:"ignore_unavailable"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ScheduleConfig defines the recurring dry-run verification.
type ScheduleConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied, for use
// when no config file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyPathsDefaults(&cfg.Paths)
	applyTasksDefaults(&cfg.Tasks)
	applyBrowserDefaults(&cfg.Browser)
	applyResolverDefaults(&cfg.Resolver)
	applyReconcilerDefaults(&cfg.Reconciler)
	applyServerDefaults(&cfg.Server)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyPathsDefaults(p *PathsConfig) {
	if p.Catalog == "" {
		p.Catalog = "products.json"
	}
	if p.UnavailableLog == "" {
		p.UnavailableLog = "unavailable.json"
	}
	if p.TokenFile == "" {
		p.TokenFile = "token.json"
	}
}

func applyTasksDefaults(t *TasksConfig) {
	if t.ListName == "" {
		t.ListName = "Groceries"
	}
	if t.MoveToList == "" {
		t.MoveToList = "Shopping"
	}
	applyRateLimitDefaults(&t.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 1000
	}
}

func applyBrowserDefaults(b *BrowserConfig) {
	if b.NavTimeout == 0 {
		b.NavTimeout = 30 * time.Second
	}
	if b.StepDelay == 0 {
		b.StepDelay = 2 * time.Second
	}
	if b.LoginSettle == 0 {
		b.LoginSettle = 4 * time.Second
	}
	if b.ResultLimit == 0 {
		b.ResultLimit = 5
	}
}

func applyResolverDefaults(r *ResolverConfig) {
	if r.TopN == 0 {
		r.TopN = 3
	}
	if r.MinSimilarity == 0 {
		r.MinSimilarity = 0.55
	}
}

func applyReconcilerDefaults(r *ReconcilerConfig) {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 2
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Interval == 0 {
		s.Interval = 12 * time.Hour
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Resolver.TopN < 1 {
		errs = append(errs, fmt.Errorf("resolver.top_n must be at least 1"))
	}
	if cfg.Resolver.MinSimilarity <= 0 || cfg.Resolver.MinSimilarity > 1 {
		errs = append(errs, fmt.Errorf(
			"resolver.min_similarity must be in (0, 1] (got %g)",
			cfg.Resolver.MinSimilarity,
		))
	}

	if cfg.Reconciler.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("reconciler.max_attempts must be at least 1"))
	}

	if cfg.Tasks.ListName == cfg.Tasks.MoveToList {
		errs = append(errs, fmt.Errorf(
			"tasks.move_to_list must differ from tasks.list_name (both %q)",
			cfg.Tasks.ListName,
		))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf(
			"notifications.discord.webhook_url is required when discord is enabled",
		))
	}

	if cfg.Schedule.Enabled && cfg.Schedule.Interval < time.Minute {
		errs = append(errs, fmt.Errorf(
			"schedule.interval must be at least 1m (got %s)", cfg.Schedule.Interval,
		))
	}

	return errors.Join(errs...)
}
