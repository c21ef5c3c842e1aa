package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[client]
server_url = "https://dash.example.com"
debounce = "500ms"
replay_interval = "10m"
resolver = "field"

[server]
rate_limit = 30
rate_window = "10s"

[logging]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://dash.example.com", cfg.Client.ServerURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Client.Debounce)
	assert.Equal(t, 10*time.Minute, cfg.Client.ReplayInterval)
	assert.Equal(t, "field", cfg.Client.Resolver)
	assert.Equal(t, 30, cfg.Server.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.Server.RateWindow)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Незаданные поля сохраняют значения по умолчанию
	assert.Equal(t, 15*time.Second, cfg.Client.HealthInterval)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown key",
			content: "[client]\nserver_ulr = \"http://x\"\n",
			errMsg:  "client.server_ulr",
		},
		{
			name:    "bad toml",
			content: "[client\n",
			errMsg:  "parsing config file",
		},
		{
			name:    "bad resolver",
			content: "[client]\nresolver = \"newest\"\n",
			errMsg:  "client.resolver",
		},
		{
			name:    "bad url",
			content: "[client]\nserver_url = \"localhost\"\n",
			errMsg:  "client.server_url",
		},
		{
			name:    "bad level",
			content: "[logging]\nlevel = \"loud\"\n",
			errMsg:  "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Client.ServerURL, cfg.Client.ServerURL)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvServerURL, "http://10.0.0.5:9000")
	t.Setenv(EnvDebounce, "3s")
	t.Setenv(EnvLogFormat, "text")
	t.Setenv(EnvRateLimit, "15")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000", cfg.Client.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.Client.Debounce)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 15, cfg.Server.RateLimit)
}

func TestApplyEnv_InvalidDuration(t *testing.T) {
	t.Setenv(EnvDebounce, "soon")

	_, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDebounce)
}

func TestResolve_UsesEnvPath(t *testing.T) {
	path := writeConfig(t, "[client]\nserver_url = \"http://env-path:1\"\n")
	t.Setenv(EnvConfig, path)

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "http://env-path:1", cfg.Client.ServerURL)
}

func TestValidateServer(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, ValidateServer(cfg))

	cfg.Server.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, ValidateServer(cfg))
}
