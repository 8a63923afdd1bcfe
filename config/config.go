package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Portal     PortalConfig     `yaml:"portal"`
	Poller     PollerConfig     `yaml:"poller"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// AccountConfig identifies one portal account.
type AccountConfig struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// PortalConfig holds the settings shared by all portal clients plus the
// configured accounts.
type PortalConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
	// The temperature endpoint is known to be slow server-side and gets
	// its own timeout.
	TemperatureTimeoutSeconds int `yaml:"temperature_timeout_seconds"`
	AuthRetryDelayMinutes     int `yaml:"auth_retry_delay_minutes"`

	Accounts []AccountConfig `yaml:"accounts"`

	Timeout            time.Duration `yaml:"-"`
	TemperatureTimeout time.Duration `yaml:"-"`
	AuthRetryDelay     time.Duration `yaml:"-"`
}

// PollerConfig holds the per-resource refresh intervals.
type PollerConfig struct {
	Enabled                    bool `yaml:"enabled"`
	StatusIntervalSeconds      int  `yaml:"status_interval_seconds"`
	TemperatureIntervalSeconds int  `yaml:"temperature_interval_seconds"`
	EventIntervalSeconds       int  `yaml:"event_interval_seconds"`
	EventWindowDays            int  `yaml:"event_window_days"`

	StatusInterval      time.Duration `yaml:"-"`
	TemperatureInterval time.Duration `yaml:"-"`
	EventInterval       time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications. Empty keys
// disable push entirely.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path and applies defaults.
func Load(path string) (*Config, error) {
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

	if len(cfg.Portal.Accounts) == 0 {
		return nil, fmt.Errorf("at least one portal account must be configured")
	}
	for i, acc := range cfg.Portal.Accounts {
		if acc.ID == "" || acc.Username == "" || acc.Password == "" {
			return nil, fmt.Errorf("portal account %d is missing id, username or password", i)
		}
	}

	if cfg.Portal.TimeoutSeconds <= 0 {
		cfg.Portal.TimeoutSeconds = 30
	}
	if cfg.Portal.TemperatureTimeoutSeconds <= 0 {
		cfg.Portal.TemperatureTimeoutSeconds = 180
	}
	if cfg.Portal.AuthRetryDelayMinutes <= 0 {
		cfg.Portal.AuthRetryDelayMinutes = 5
	}
	cfg.Portal.Timeout = time.Duration(cfg.Portal.TimeoutSeconds) * time.Second
	cfg.Portal.TemperatureTimeout = time.Duration(cfg.Portal.TemperatureTimeoutSeconds) * time.Second
	cfg.Portal.AuthRetryDelay = time.Duration(cfg.Portal.AuthRetryDelayMinutes) * time.Minute

	if cfg.Poller.StatusIntervalSeconds <= 0 {
		cfg.Poller.StatusIntervalSeconds = 30
	}
	if cfg.Poller.TemperatureIntervalSeconds <= 0 {
		cfg.Poller.TemperatureIntervalSeconds = 600
	}
	if cfg.Poller.EventIntervalSeconds <= 0 {
		cfg.Poller.EventIntervalSeconds = 60
	}
	if cfg.Poller.EventWindowDays <= 0 {
		cfg.Poller.EventWindowDays = 30
	}
	cfg.Poller.StatusInterval = time.Duration(cfg.Poller.StatusIntervalSeconds) * time.Second
	cfg.Poller.TemperatureInterval = time.Duration(cfg.Poller.TemperatureIntervalSeconds) * time.Second
	cfg.Poller.EventInterval = time.Duration(cfg.Poller.EventIntervalSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "alarm.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 15
	}

	return &cfg, nil
}
