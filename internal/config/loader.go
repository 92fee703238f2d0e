package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// LoadEnvFiles loads .env and .env.local without overriding variables already
// present in the process environment.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads configuration from environment variables, optionally layered over
// the YAML file named by CONFIG_PATH. Priority: ENV > YAML > env-default tags.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Search.DefaultLimit < 1 || c.Search.MaxLimit < 1 {
		errs = append(errs, errors.New("search limits must be positive"))
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		errs = append(errs, fmt.Errorf("search default limit %d exceeds max %d", c.Search.DefaultLimit, c.Search.MaxLimit))
	}
	if c.History.MaxHistory < 1 || c.History.DedupWindow < 1 {
		errs = append(errs, errors.New("history bounds must be positive"))
	}
	if c.History.DedupWindow > c.History.MaxHistory {
		errs = append(errs, fmt.Errorf("history dedup window %d exceeds max history %d", c.History.DedupWindow, c.History.MaxHistory))
	}
	if c.History.MaxInFlight < 1 {
		errs = append(errs, errors.New("history max in-flight must be positive"))
	}
	if c.OpenLibrary.RPS < 1 {
		errs = append(errs, errors.New("open library rps must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
