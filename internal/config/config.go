package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/claude/repcoach/internal/coach"
	"github.com/robfig/cron"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Coach     CoachConfig     `yaml:"coach"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig puts the server on a tailnet via tsnet. Peers are
// identified by their tailnet login.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// CoachConfig tunes the profile warnings and the scheduled adaptation review.
type CoachConfig struct {
	ConsultBMI     float64 `yaml:"consult_bmi"`
	AmbitiousGapKg float64 `yaml:"ambitious_gap_kg"`
	ReviewSchedule string  `yaml:"review_schedule"`
}

// CatalogConfig points at an optional YAML exercise catalog. Without a seed
// file the built-in catalog is used.
type CatalogConfig struct {
	SeedFile string `yaml:"seed_file"`
	Watch    bool   `yaml:"watch"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Thresholds returns the profile thresholds, falling back to the defaults
// for unset values.
func (c CoachConfig) Thresholds() coach.Thresholds {
	th := coach.DefaultThresholds()
	if c.ConsultBMI > 0 {
		th.ConsultBMI = c.ConsultBMI
	}
	if c.AmbitiousGapKg > 0 {
		th.AmbitiousGapKg = c.AmbitiousGapKg
	}
	return th
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix REPCOACH_ and underscore-separated paths:
//
//	REPCOACH_SERVER_HOST, REPCOACH_SERVER_PORT,
//	REPCOACH_DB_HOST, REPCOACH_DB_PORT, REPCOACH_DB_NAME,
//	REPCOACH_DB_USER, REPCOACH_DB_PASSWORD, REPCOACH_DB_SSLMODE,
//	REPCOACH_AUTH_API_KEY,
//	REPCOACH_TAILSCALE_ENABLED, REPCOACH_TAILSCALE_HOSTNAME, REPCOACH_TAILSCALE_STATE_DIR,
//	REPCOACH_COACH_REVIEW_SCHEDULE, REPCOACH_CATALOG_SEED_FILE
func Load(path string) (*Config, error) {
	cfg := &Config{
		Coach: CoachConfig{ReviewSchedule: "@weekly"},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	strs := map[string]*string{
		"REPCOACH_SERVER_HOST":           &cfg.Server.Host,
		"REPCOACH_DB_HOST":               &cfg.Database.Host,
		"REPCOACH_DB_NAME":               &cfg.Database.Name,
		"REPCOACH_DB_USER":               &cfg.Database.User,
		"REPCOACH_DB_PASSWORD":           &cfg.Database.Password,
		"REPCOACH_DB_SSLMODE":            &cfg.Database.SSLMode,
		"REPCOACH_AUTH_API_KEY":          &cfg.Auth.APIKey,
		"REPCOACH_TAILSCALE_HOSTNAME":    &cfg.Tailscale.Hostname,
		"REPCOACH_TAILSCALE_STATE_DIR":   &cfg.Tailscale.StateDir,
		"REPCOACH_COACH_REVIEW_SCHEDULE": &cfg.Coach.ReviewSchedule,
		"REPCOACH_CATALOG_SEED_FILE":     &cfg.Catalog.SeedFile,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REPCOACH_SERVER_PORT": &cfg.Server.Port,
		"REPCOACH_DB_PORT":     &cfg.Database.Port,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	if v := os.Getenv("REPCOACH_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Coach.ConsultBMI < 0 || c.Coach.AmbitiousGapKg < 0 {
		return fmt.Errorf("coach thresholds must not be negative")
	}
	if c.Coach.ReviewSchedule != "" {
		if _, err := cron.Parse(c.Coach.ReviewSchedule); err != nil {
			return fmt.Errorf("coach.review_schedule: %w", err)
		}
	}
	if c.Catalog.Watch && c.Catalog.SeedFile == "" {
		return fmt.Errorf("catalog.watch needs catalog.seed_file")
	}
	return nil
}
