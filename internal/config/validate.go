package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks cross-field constraints and returns every problem found.
func Validate(cfg *Config) error {
	var errs []error

	u, err := url.Parse(cfg.Client.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("client.server_url: %q is not an http(s) URL", cfg.Client.ServerURL))
	}
	if cfg.Client.DBPath == "" {
		errs = append(errs, errors.New("client.db_path: must not be empty"))
	}
	switch cfg.Client.Resolver {
	case "lww", "field":
	default:
		errs = append(errs, fmt.Errorf("client.resolver: %q must be lww or field", cfg.Client.Resolver))
	}
	if cfg.Client.Debounce <= 0 {
		errs = append(errs, errors.New("client.debounce: must be positive"))
	}
	if cfg.Client.HealthInterval <= 0 {
		errs = append(errs, errors.New("client.health_interval: must be positive"))
	}
	if cfg.Client.RealtimeRetry <= 0 {
		errs = append(errs, errors.New("client.realtime_retry: must be positive"))
	}
	if cfg.Client.ReplayInterval < 0 {
		errs = append(errs, errors.New("client.replay_interval: must not be negative"))
	}

	if cfg.Server.TokenTTL <= 0 {
		errs = append(errs, errors.New("server.token_ttl: must be positive"))
	}
	if cfg.Server.RateLimit <= 0 || cfg.Server.RateWindow <= 0 {
		errs = append(errs, errors.New("server.rate_limit and server.rate_window: must be positive"))
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout: must be positive"))
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: %q must be debug, info, warn or error", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: %q must be auto, text or json", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}

// ValidateServer checks settings only the server needs.
func ValidateServer(cfg *Config) error {
	if len(cfg.Server.JWTSecret) < 32 {
		return errors.New("server.jwt_secret: must be at least 32 bytes")
	}
	if cfg.Server.DBPath == "" {
		return errors.New("server.db_path: must not be empty")
	}
	return nil
}
