package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names for overrides.
const (
	EnvConfig = "LIFEDASH_CONFIG"

	EnvServerURL      = "LIFEDASH_SERVER_URL"
	EnvDBPath         = "LIFEDASH_DB_PATH"
	EnvResolver       = "LIFEDASH_RESOLVER"
	EnvDebounce       = "LIFEDASH_DEBOUNCE"
	EnvReplayInterval = "LIFEDASH_REPLAY_INTERVAL"

	EnvServerAddress = "LIFEDASH_SERVER_ADDRESS"
	EnvServerDBPath  = "LIFEDASH_SERVER_DB_PATH"
	EnvJWTSecret     = "LIFEDASH_JWT_SECRET"
	EnvRateLimit     = "LIFEDASH_RATE_LIMIT"

	EnvLogLevel  = "LIFEDASH_LOG_LEVEL"
	EnvLogFormat = "LIFEDASH_LOG_FORMAT"
)

// ApplyEnv overrides cfg with LIFEDASH_* environment variables that are set.
func ApplyEnv(cfg *Config) error {
	cfg.Client.ServerURL = getEnv(EnvServerURL, cfg.Client.ServerURL)
	cfg.Client.DBPath = getEnv(EnvDBPath, cfg.Client.DBPath)
	cfg.Client.Resolver = getEnv(EnvResolver, cfg.Client.Resolver)

	var err error
	if cfg.Client.Debounce, err = getDurationEnv(EnvDebounce, cfg.Client.Debounce); err != nil {
		return err
	}
	if cfg.Client.ReplayInterval, err = getDurationEnv(EnvReplayInterval, cfg.Client.ReplayInterval); err != nil {
		return err
	}

	cfg.Server.Address = getEnv(EnvServerAddress, cfg.Server.Address)
	cfg.Server.DBPath = getEnv(EnvServerDBPath, cfg.Server.DBPath)
	cfg.Server.JWTSecret = getEnv(EnvJWTSecret, cfg.Server.JWTSecret)
	if cfg.Server.RateLimit, err = getIntEnv(EnvRateLimit, cfg.Server.RateLimit); err != nil {
		return err
	}

	cfg.Logging.Level = getEnv(EnvLogLevel, cfg.Logging.Level)
	cfg.Logging.Format = getEnv(EnvLogFormat, cfg.Logging.Format)

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
	return d, nil
}

func getIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
	return n, nil
}
