package config

import (
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/panoramicdata/solidtime-go/observability"
)

// Config represents the SDK configuration.
type Config struct {
	Client        ClientConfig         `koanf:"client" json:"client" yaml:"client"`
	Log           LogConfig            `koanf:"log" json:"log" yaml:"log"`
	Observability observability.Config `koanf:"observability" json:"observability" yaml:"observability"`

	// k holds the underlying Koanf instance for access to custom keys
	k *koanf.Koanf `json:"-" yaml:"-"`
}

// ClientConfig holds the API client settings.
type ClientConfig struct {
	// Token is the personal access token sent as a bearer credential.
	Token string `koanf:"token" json:"-" yaml:"token" validate:"required,notblank"`

	// BaseURL is the API root, e.g. https://app.solidtime.io/api.
	BaseURL string `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"required,httpurl"`

	// Timeout bounds a whole call, including rate-limit backoff.
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gt=0"`

	// Verbose logs every request and response at debug level.
	Verbose bool `koanf:"verbose" json:"verbose" yaml:"verbose"`

	// StrictJSON rejects response fields the SDK does not know.
	StrictJSON bool `koanf:"strictjson" json:"strictjson" yaml:"strictjson"`

	// MaxRetries caps how often a rate-limited call is retried.
	MaxRetries int `koanf:"maxretries" json:"maxretries" yaml:"maxretries" validate:"gte=0,lte=10"`

	// InitialBackoff is the fallback delay before the first retry.
	InitialBackoff time.Duration `koanf:"initialbackoff" json:"initialbackoff" yaml:"initialbackoff" validate:"gt=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// GetString returns the value of a key outside the typed configuration, e.g.
// settings owned by an application embedding the SDK.
func (c *Config) GetString(key string) string {
	if c == nil || c.k == nil {
		return ""
	}
	return c.k.String(key)
}

// Exists reports whether key was set by any configuration source.
func (c *Config) Exists(key string) bool {
	if c == nil || c.k == nil {
		return false
	}
	return c.k.Exists(key)
}
