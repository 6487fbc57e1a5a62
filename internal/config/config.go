package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	BaseURL        string
	LoginPath      string
	RefreshPath    string
	SessionDB      string
	RefreshTimeout time.Duration
	RequestTimeout time.Duration

	MockUsername   string
	MockPassword   string
	JWTSecret      string
	AccessTokenTTL time.Duration
}

func defaults() Config {
	return Config{
		BaseURL:        "http://localhost:8081",
		LoginPath:      "/auth/login",
		RefreshPath:    "/auth/refresh",
		SessionDB:      "data/session.db",
		RefreshTimeout: 30 * time.Second,
		RequestTimeout: 30 * time.Second,
		MockUsername:   "admin",
		MockPassword:   "admin",
		AccessTokenTTL: 15 * time.Minute,
	}
}

// Load reads the configuration from the environment, after loading any .env
// files given (or ./.env when none are).
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a configuration from a variable lookup, applying defaults
// for anything unset.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := defaults()

	str := func(key string, target *string) {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			*target = value
		}
	}
	dur := func(key string, target *time.Duration) error {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			return nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", key)
		}
		if d < 0 {
			return errors.Newf("invalid %s: must not be negative", key)
		}
		*target = d
		return nil
	}

	str("API_BASE_URL", &cfg.BaseURL)
	str("LOGIN_PATH", &cfg.LoginPath)
	str("REFRESH_PATH", &cfg.RefreshPath)
	str("SESSION_DB", &cfg.SessionDB)
	str("MOCK_USERNAME", &cfg.MockUsername)
	str("MOCK_PASSWORD", &cfg.MockPassword)
	str("JWT_SECRET", &cfg.JWTSecret)

	for key, target := range map[string]*time.Duration{
		"REFRESH_TIMEOUT":  &cfg.RefreshTimeout,
		"REQUEST_TIMEOUT":  &cfg.RequestTimeout,
		"ACCESS_TOKEN_TTL": &cfg.AccessTokenTTL,
	} {
		if err := dur(key, target); err != nil {
			return nil, err
		}
	}

	if cfg.AccessTokenTTL == 0 {
		return nil, errors.New("invalid ACCESS_TOKEN_TTL: must be positive")
	}

	return &cfg, nil
}
