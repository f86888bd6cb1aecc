package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port                int           `envconfig:"PORT" default:"3318"`
	DatabaseURL         string        `envconfig:"DATABASE_URL"`
	DatabaseType        string        `envconfig:"DATABASE_TYPE" default:"sqlite"`
	TokenSecret         string        `envconfig:"TOKEN_SECRET"`
	TokenTTL            time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
	AutoAdvanceInterval time.Duration `envconfig:"AUTO_ADVANCE_INTERVAL" default:"5s"`
	SeedFile            string        `envconfig:"SEED_FILE"`
	Debug               bool          `envconfig:"DEBUG"`
}

// EnvFile is read before the environment; variables already set win
const EnvFile = ".env"

// ParseFlags builds the configuration. Precedence: flag, environment,
// .env file, default.
func ParseFlags(args []string) (Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", EnvFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	// Environment values become the flag defaults
	fs := flag.NewFlagSet("hackvote", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Token signing secret (prefer env)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Lifetime of issued tokens")

	fs.DurationVar(&cfg.AutoAdvanceInterval, "auto-advance-interval", cfg.AutoAdvanceInterval, "Deadline check interval (0 disables)")
	fs.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML roster applied at startup")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("token TTL must be positive")
	}
	if cfg.AutoAdvanceInterval < 0 {
		return Config{}, errors.New("auto-advance interval cannot be negative")
	}

	return cfg, nil
}
