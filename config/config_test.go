package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panoramicdata/solidtime-go/observability"
)

const (
	envToken   = "SOLIDTIME_CLIENT_TOKEN"
	envBaseURL = "SOLIDTIME_CLIENT_BASEURL"
	testToken  = "abc123"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solidtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv(envToken, testToken)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, testToken, cfg.Client.Token)
	assert.Equal(t, DefaultBaseURL, cfg.Client.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.False(t, cfg.Client.Verbose)
	assert.False(t, cfg.Client.StrictJSON)
	assert.Equal(t, 3, cfg.Client.MaxRetries)
	assert.Equal(t, time.Second, cfg.Client.InitialBackoff)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.False(t, cfg.Observability.Enabled)
	assert.Equal(t, "solidtime-go", cfg.Observability.Service.Name)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv(envToken, "")

	_, err := Load("")
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "missing", cfgErr.Category)
	assert.Equal(t, "client.token", cfgErr.Field)
	assert.Contains(t, err.Error(), envToken)
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	t.Setenv(envToken, testToken)
	t.Setenv(envBaseURL, "https://time.example.com/api")
	t.Setenv("SOLIDTIME_CLIENT_VERBOSE", "true")

	path := writeFile(t, `
client:
  token: from-file
  baseurl: https://ignored.example.com/api
  timeout: 5s
  maxretries: 5
log:
  level: debug
  pretty: true
app:
  region: eu
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, testToken, cfg.Client.Token)
	assert.Equal(t, "https://time.example.com/api", cfg.Client.BaseURL)
	assert.True(t, cfg.Client.Verbose)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 5, cfg.Client.MaxRetries)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)

	assert.Equal(t, "eu", cfg.GetString("app.region"))
	assert.True(t, cfg.Exists("app.region"))
	assert.False(t, cfg.Exists("app.zone"))
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(envToken, testToken)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load yaml config")
}

func TestLoadBytes(t *testing.T) {
	t.Setenv(envToken, "")
	os.Unsetenv(envToken)

	cfg, err := LoadBytes([]byte(`
client:
  token: abc123
  strictjson: true
observability:
  enabled: true
  service:
    name: time-sync
  trace:
    endpoint: http://localhost:4318
    samplerate: 0.5
  metrics:
    enabled: false
`))
	require.NoError(t, err)

	assert.Equal(t, testToken, cfg.Client.Token)
	assert.True(t, cfg.Client.StrictJSON)
	assert.True(t, cfg.Observability.Enabled)
	assert.Equal(t, "time-sync", cfg.Observability.Service.Name)
	assert.Equal(t, "http://localhost:4318", cfg.Observability.Trace.Endpoint)
	require.NotNil(t, cfg.Observability.Trace.SampleRate)
	assert.InDelta(t, 0.5, *cfg.Observability.Trace.SampleRate, 0.0001)
	require.NotNil(t, cfg.Observability.Metrics.Enabled)
	assert.False(t, *cfg.Observability.Metrics.Enabled)
}

func TestLoadBytesInvalidObservability(t *testing.T) {
	t.Setenv(envToken, testToken)

	_, err := LoadBytes([]byte(`
observability:
  enabled: true
  trace:
    protocol: grpc
    endpoint: http://localhost:4317
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, observability.ErrInvalidEndpointFormat)
}

func TestLoadBytesMalformedYAML(t *testing.T) {
	t.Setenv(envToken, testToken)

	_, err := LoadBytes([]byte("client: [unterminated"))
	require.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Token:          testToken,
			BaseURL:        DefaultBaseURL,
			Timeout:        30 * time.Second,
			MaxRetries:     3,
			InitialBackoff: time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		field     string
		category  string
		errSubstr string
	}{
		{
			name:     "blank token",
			mutate:   func(c *Config) { c.Client.Token = "   " },
			field:    "client.token",
			category: "missing",
		},
		{
			name:      "relative base url",
			mutate:    func(c *Config) { c.Client.BaseURL = "/api" },
			field:     "client.baseurl",
			category:  "invalid",
			errSubstr: "absolute http or https url",
		},
		{
			name:     "unsupported scheme",
			mutate:   func(c *Config) { c.Client.BaseURL = "ftp://app.solidtime.io/api" },
			field:    "client.baseurl",
			category: "invalid",
		},
		{
			name:     "missing base url",
			mutate:   func(c *Config) { c.Client.BaseURL = "" },
			field:    "client.baseurl",
			category: "missing",
		},
		{
			name:      "zero timeout",
			mutate:    func(c *Config) { c.Client.Timeout = 0 },
			field:     "client.timeout",
			category:  "invalid",
			errSubstr: "greater than 0",
		},
		{
			name:      "negative retries",
			mutate:    func(c *Config) { c.Client.MaxRetries = -1 },
			field:     "client.maxretries",
			category:  "invalid",
			errSubstr: "out of range",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Log.Level = "loud" },
			field:     "log.level",
			category:  "invalid",
			errSubstr: "must be one of: trace, debug, info, warn, error, disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %T: %v", err, err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, tt.category, cfgErr.Category)
			if tt.errSubstr != "" {
				assert.Contains(t, err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
	assert.Error(t, Validate(nil))
}

func TestGetStringWithoutKoanf(t *testing.T) {
	var cfg *Config
	assert.Empty(t, cfg.GetString("client.token"))
	assert.False(t, (&Config{}).Exists("client.token"))
}
