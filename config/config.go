package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Booking    BookingConfig    `yaml:"booking"`
	Session    SessionConfig    `yaml:"session"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds the console's HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// UpstreamConfig describes the booking backend the console talks to.
type UpstreamConfig struct {
	BaseURL         string            `yaml:"base_url"`
	TimeoutSeconds  int               `yaml:"timeout_seconds"`
	Timeout         time.Duration     `yaml:"-"`
	HTTPProxy       string            `yaml:"http_proxy"`
	Headers         map[string]string `yaml:"headers"`
	RateLimitPerSec float64           `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int               `yaml:"rate_limit_burst"`
}

// BookingConfig holds the client-side booking rules' settings.
type BookingConfig struct {
	Timezone          string         `yaml:"timezone"`
	Location          *time.Location `yaml:"-"`
	PrecheckConflicts bool           `yaml:"precheck_conflicts"`
}

// SessionConfig controls console sessions.
type SessionConfig struct {
	TTLMinutes           int           `yaml:"ttl_minutes"`
	TTL                  time.Duration `yaml:"-"`
	CookieName           string        `yaml:"cookie_name"`
	SweepIntervalMinutes int           `yaml:"sweep_interval_minutes"`
	SweepInterval        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// WatcherConfig controls the booking status poller.
type WatcherConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads the configuration from the given path. A .env file in the
// working directory, if any, is loaded first so RMS_* overrides can live there.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, for tests and
// local runs without a file.
func Default() *Config {
	cfg := &Config{}
	cfg.Booking.PrecheckConflicts = true
	if err := cfg.normalize(); err != nil {
		panic(err)
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RMS_UPSTREAM_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("RMS_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("RMS_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("RMS_VAPID_PUBLIC_KEY"); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := os.Getenv("RMS_VAPID_PRIVATE_KEY"); v != "" {
		cfg.Push.PrivateKey = v
	}
	if v := os.Getenv("RMS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func (cfg *Config) normalize() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "http://localhost:8000/api"
	}
	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	cfg.Upstream.Timeout = time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second

	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "Local"
	}
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Booking.Timezone, err)
	}
	cfg.Booking.Location = loc

	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 12 * 60
	}
	cfg.Session.TTL = time.Duration(cfg.Session.TTLMinutes) * time.Minute
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "rms_session"
	}
	if cfg.Session.SweepIntervalMinutes <= 0 {
		cfg.Session.SweepIntervalMinutes = 15
	}
	cfg.Session.SweepInterval = time.Duration(cfg.Session.SweepIntervalMinutes) * time.Minute

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "rmsconsole.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}

	if cfg.Watcher.IntervalSeconds <= 0 {
		cfg.Watcher.IntervalSeconds = 60
	}
	cfg.Watcher.Interval = time.Duration(cfg.Watcher.IntervalSeconds) * time.Second

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}
