package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOpenHour    = 7
	DefaultCloseHour   = 22
	DefaultSnapshotKey = "restaurantReservations"
)

var validate = validator.New()

// Config represents the overall application configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Server     ServerConfig     `yaml:"server"`
	Venue      VenueConfig      `yaml:"venue"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// VenueConfig describes the opening window and the tables that can be booked.
// CloseHour is inclusive: with 22 a booking at 22:30 is still accepted.
type VenueConfig struct {
	OpenHour  int            `yaml:"open_hour" validate:"gte=0,lte=23"`
	CloseHour int            `yaml:"close_hour" validate:"gte=0,lte=23,gtefield=OpenHour"`
	Tables    []string       `yaml:"tables" validate:"dive,required"`
	Timezone  string         `yaml:"timezone"`
	Location  *time.Location `yaml:"-" validate:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level" validate:"oneof=silent error warn info"`
}

// StorageConfig selects where the reservation snapshot lives.
type StorageConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=gorm badger"`
	SnapshotKey string `yaml:"snapshot_key"`
	BadgerPath  string `yaml:"badger_path"`
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
	Size int `yaml:"size"`
}

// envOverrides are the few settings that deployments set through the environment.
type envOverrides struct {
	DatabaseDSN string `env:"DATABASE_DSN"`
	ServerPort  int    `env:"SERVER_PORT"`
	LogLevel    string `env:"LOG_LEVEL"`
}

// Load reads the configuration from the given path.
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

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides file values with any non-empty environment variable.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if _, err := env.UnmarshalFromEnviron(&o); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if o.DatabaseDSN != "" {
		cfg.Database.DSN = o.DatabaseDSN
	}
	if o.ServerPort > 0 {
		cfg.Server.Port = o.ServerPort
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	return nil
}

// Finalize fills defaults, resolves the venue timezone and validates the result.
func (cfg *Config) Finalize() error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}

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
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	// Both zero means the section was left out entirely.
	if cfg.Venue.OpenHour == 0 && cfg.Venue.CloseHour == 0 {
		cfg.Venue.OpenHour = DefaultOpenHour
		cfg.Venue.CloseHour = DefaultCloseHour
	}
	cfg.Venue.Location = time.Local
	if cfg.Venue.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Venue.Timezone)
		if err != nil {
			return fmt.Errorf("failed to load timezone %q: %w", cfg.Venue.Timezone, err)
		}
		cfg.Venue.Location = loc
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "reservations.db"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "gorm"
	}
	if cfg.Storage.SnapshotKey == "" {
		cfg.Storage.SnapshotKey = DefaultSnapshotKey
	}
	if cfg.Storage.BadgerPath == "" {
		cfg.Storage.BadgerPath = "./data/badger"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Push.Enabled && (cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "") {
		return fmt.Errorf("invalid configuration: push is enabled but VAPID keys are missing")
	}
	return nil
}
