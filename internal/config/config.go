package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port    int    `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	LogVerbose bool `env:"LOG_VERBOSE" envDefault:"true"`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	TenantHeader    string        `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`

	// Seed makes draws repeatable; 0 seeds every draw from the clock.
	Seed int64 `env:"RAFFLE_SEED" envDefault:"0"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; in production variables are set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
