// Package config loads lifedash configuration.
//
// Values are resolved in layers: built-in defaults, then the TOML file, then
// LIFEDASH_* environment variables, then command-line flags applied by the
// caller. Durations are written as Go duration strings ("2s", "5m").
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config корневая структура конфигурации
type Config struct {
	Client  ClientConfig  `toml:"client"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

// ClientConfig настройки клиента и демона watch
type ClientConfig struct {
	ServerURL      string        `toml:"server_url"`
	DBPath         string        `toml:"db_path"`
	Resolver       string        `toml:"resolver"`        // lww | field
	MetricsAddr    string        `toml:"metrics_addr"`    // пусто - метрики демона выключены
	Debounce       time.Duration `toml:"debounce"`        // окно debounce отправки
	HealthInterval time.Duration `toml:"health_interval"` // период опроса /health
	RealtimeRetry  time.Duration `toml:"realtime_retry"`  // пауза перед переподпиской
	ReplayInterval time.Duration `toml:"replay_interval"` // 0 - периодический replay выключен
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// ServerConfig настройки сервера
type ServerConfig struct {
	Address         string        `toml:"address"`
	DBPath          string        `toml:"db_path"`
	JWTSecret       string        `toml:"jwt_secret"`
	JWTIssuer       string        `toml:"jwt_issuer"`
	TokenTTL        time.Duration `toml:"token_ttl"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	RateLimit       int           `toml:"rate_limit"`  // запросов на пользователя за окно
	RateWindow      time.Duration `toml:"rate_window"` // окно rate limit
}

// LoggingConfig настройки логирования
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug | info | warn | error
	Format string `toml:"format"` // auto | text | json
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			ServerURL:      "http://localhost:8080",
			DBPath:         filepath.Join(DefaultDataDir(), "lifedash.db"),
			Resolver:       "lww",
			Debounce:       2 * time.Second,
			HealthInterval: 15 * time.Second,
			RealtimeRetry:  5 * time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Address:         ":8080",
			DBPath:          "lifedash-server.db",
			JWTIssuer:       "lifedash",
			TokenTTL:        30 * 24 * time.Hour,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       600,
			RateWindow:      time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// DefaultConfigPath returns the platform config file location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "lifedash.toml"
	}
	return filepath.Join(dir, "lifedash", "config.toml")
}

// DefaultDataDir returns the directory for the local database.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "lifedash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "lifedash")
}
