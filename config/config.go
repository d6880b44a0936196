package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix of environment variables read by Load.
	// SOLIDTIME_CLIENT_TOKEN maps to client.token.
	EnvPrefix = "SOLIDTIME_"

	// DefaultBaseURL is the hosted Solidtime API.
	DefaultBaseURL = "https://app.solidtime.io/api"
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The YAML file at path, when path is not empty
// 3. Default values (lowest priority)
func Load(path string) (*Config, error) {
	var src koanf.Provider
	if path != "" {
		src = file.Provider(path)
	}
	return load(src)
}

// LoadBytes is like Load but reads the YAML document from b.
func LoadBytes(b []byte) (*Config, error) {
	return load(rawbytes.Provider(b))
}

func load(yamlSource koanf.Provider) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if yamlSource != nil {
		if err := k.Load(yamlSource, yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load yaml config: %w", err)
		}
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey converts SOLIDTIME_CLIENT_BASEURL to client.baseurl.
func envKey(k, v string) (string, any) {
	k = strings.TrimPrefix(k, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
}

// envVar is the inverse of envKey, used in error messages.
func envVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"client.baseurl":        DefaultBaseURL,
		"client.timeout":        "30s",
		"client.verbose":        false,
		"client.strictjson":     false,
		"client.maxretries":     3,
		"client.initialbackoff": "1s",

		"log.level":  "info",
		"log.pretty": false,

		"observability.enabled":      false,
		"observability.service.name": "solidtime-go",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
