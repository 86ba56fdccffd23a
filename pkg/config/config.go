// Package config carries the environment-driven settings for the CLI.
// Flags override these values; QUICKERSTAT_COOKIES is consumed separately
// by the auth source chain.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings.
type Config struct {
	BaseURL     string        `env:"QUICKERSTAT_BASE_URL" env-default:"https://getquicker.net"`
	MaxPages    int           `env:"QUICKERSTAT_MAX_PAGES" env-default:"100"`
	CacheTTL    time.Duration `env:"QUICKERSTAT_CACHE_TTL" env-default:"24h"`
	OutDir      string        `env:"QUICKERSTAT_OUT_DIR" env-default:"."`
	DefaultUser string        `env:"QUICKERSTAT_DEFAULT_USER" env-default:"113342-"`
}

// Load reads settings from the environment, after sourcing an optional
// .env file for local runs.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment config: %w", err)
	}
	return &cfg, nil
}
