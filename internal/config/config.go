// Package config loads process configuration. Secrets and file locations
// come from the environment (optionally via a dotenv file); the schedule,
// calendar list, reminder table and allowlists come from a YAML file.
// Any missing required value fails startup, nothing here is recoverable.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/guilherme-santos/calremind"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// BotToken authenticates a chat gateway client. The console messenger
	// does not use it, so it is optional until a gateway is wired in.
	BotToken              string `envconfig:"BOT_TOKEN"`
	LogChannelID          string `envconfig:"LOG_CHANNEL_ID" validate:"required"`
	DatabaseFile          string `envconfig:"DATABASE_FILE" default:"calremind.db"`
	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE" default:"credentials.json"`
	ConfigFile            string `envconfig:"CONFIG_FILE" default:"calremind.yaml"`
	LogLevel              string `envconfig:"LOG_LEVEL" default:"info"`

	File FileConfig `ignored:"true"`
}

// FileConfig is the YAML half of the configuration.
type FileConfig struct {
	// Cron is the tick schedule, e.g. "0 18 * * *".
	Cron string `yaml:"cron" validate:"required"`

	// Timezone is the IANA zone the schedule and the next-day window are
	// evaluated in. Empty means the process's local zone.
	Timezone string `yaml:"timezone"`

	// Guilds is the tenant allowlist; the first entry is the guild the
	// scheduled pipeline runs for.
	Guilds []string `yaml:"guilds" validate:"required,min=1"`

	// Admins are the user ids allowed to run `login`.
	Admins []string `yaml:"admins" validate:"required,min=1"`

	Calendars []calremind.Calendar `yaml:"calendars" validate:"required,min=1"`

	// Reminders maps exact event names to the message sent for them.
	Reminders map[string]string `yaml:"reminders"`
}

// Load resolves the configuration: dotenv file (optional), environment,
// then the YAML file named by CONFIG_FILE, and validates the result.
func Load() (*Config, error) {
	// A missing dotenv file is fine; the environment may be complete.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: processing environment: %w", err)
	}

	data, err := os.ReadFile(cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", cfg.ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, &cfg.File); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", cfg.ConfigFile, err)
	}

	for i := range cfg.File.Calendars {
		if cfg.File.Calendars[i].Platform == "" {
			cfg.File.Calendars[i].Platform = "google"
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validating: %w", err)
	}
	return &cfg, nil
}

// Tenant is the guild the scheduled pipeline polls and notifies for.
func (c *Config) Tenant() calremind.Tenant {
	return calremind.Tenant(c.File.Guilds[0])
}

func (c *Config) Rules() calremind.Rules {
	return calremind.Rules(c.File.Reminders)
}

func (c *Config) Location() (*time.Location, error) {
	if c.File.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.File.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", c.File.Timezone, err)
	}
	return loc, nil
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
