package observability

import (
	"strings"
	"time"
)

const (
	// EndpointStdout is a special endpoint value that outputs to stdout (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// CompressionGzip specifies gzip compression for OTLP export.
	CompressionGzip = "gzip"

	// CompressionNone specifies no compression for OTLP export.
	CompressionNone = "none"

	// TemporalityDelta reports the change in value since the last export.
	TemporalityDelta = "delta"

	// TemporalityCumulative reports the total value since the start of the measurement.
	TemporalityCumulative = "cumulative"

	// EnvironmentDevelopment is the default environment name.
	EnvironmentDevelopment = "development"

	// DefaultServiceName identifies the SDK when no service name is configured.
	DefaultServiceName = "solidtime-go"
)

// BoolPtr returns a pointer to the provided bool value.
// Helpful when optional boolean configuration fields are used.
func BoolPtr(v bool) *bool {
	return &v
}

// Float64Ptr returns a pointer to the provided float64 value.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Config defines the configuration for observability features.
// It is loaded as the "observability" block of the SDK configuration.
type Config struct {
	// Enabled controls whether observability is active.
	// When false, the provider is a no-op.
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Service contains service identification metadata.
	Service ServiceConfig `koanf:"service" json:"service" yaml:"service"`

	// Environment indicates the deployment environment (e.g., production, staging, development).
	Environment string `koanf:"environment" json:"environment" yaml:"environment"`

	// Trace contains tracing-specific configuration.
	Trace TraceConfig `koanf:"trace" json:"trace" yaml:"trace"`

	// Metrics contains metrics-specific configuration.
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// ServiceConfig contains service identification metadata.
type ServiceConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name"`
	Version string `koanf:"version" json:"version" yaml:"version"`
}

// TraceConfig defines configuration for distributed tracing.
type TraceConfig struct {
	// Enabled controls whether tracing is active.
	// nil = apply default (true when observability is enabled), false = explicitly disabled.
	Enabled *bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Endpoint specifies where to send trace data.
	// Special value "stdout" enables console output for local development.
	// HTTP endpoints are full URLs ("http://localhost:4318"); gRPC endpoints are "host:port".
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`

	// Protocol specifies the OTLP protocol to use: "http" or "grpc".
	Protocol string `koanf:"protocol" json:"protocol" yaml:"protocol"`

	// Insecure disables TLS for OTLP endpoints.
	Insecure bool `koanf:"insecure" json:"insecure" yaml:"insecure"`

	// Headers are sent with every OTLP export (e.g. API keys).
	Headers map[string]string `koanf:"headers" json:"headers" yaml:"headers"`

	// Compression is "gzip" (default) or "none".
	Compression string `koanf:"compression" json:"compression" yaml:"compression"`

	// SampleRate is the fraction of traces recorded (0.0 to 1.0).
	// nil = apply default (1.0).
	SampleRate *float64 `koanf:"samplerate" json:"samplerate" yaml:"samplerate"`

	// BatchTimeout is how long spans are buffered before export.
	BatchTimeout time.Duration `koanf:"batchtimeout" json:"batchtimeout" yaml:"batchtimeout"`

	// ExportTimeout bounds a single export.
	ExportTimeout time.Duration `koanf:"exporttimeout" json:"exporttimeout" yaml:"exporttimeout"`
}

// MetricsConfig defines configuration for metrics collection.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// nil = apply default (true when observability is enabled), false = explicitly disabled.
	Enabled *bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Endpoint specifies where to send metric data. "stdout" prints to the console.
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`

	// Protocol is "http" or "grpc". If empty, metrics inherit the trace protocol.
	Protocol string `koanf:"protocol" json:"protocol" yaml:"protocol"`

	// Insecure disables TLS. Falls back to the trace setting when unset.
	Insecure *bool `koanf:"insecure" json:"insecure" yaml:"insecure"`

	// Headers for OTLP export. If empty, metrics inherit trace headers.
	Headers map[string]string `koanf:"headers" json:"headers" yaml:"headers"`

	// Compression is "gzip" (default) or "none".
	Compression string `koanf:"compression" json:"compression" yaml:"compression"`

	// Temporality is "cumulative" (default) or "delta".
	Temporality string `koanf:"temporality" json:"temporality" yaml:"temporality"`

	// Interval specifies how often metrics are exported.
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval"`

	// ExportTimeout bounds a single export.
	ExportTimeout time.Duration `koanf:"exporttimeout" json:"exporttimeout" yaml:"exporttimeout"`
}

// ApplyDefaults sets default values for any config fields that are not specified.
func (c *Config) ApplyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = DefaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = "unknown"
	}
	if c.Environment == "" {
		c.Environment = EnvironmentDevelopment
	}

	c.applyTraceDefaults()
	c.applyMetricsDefaults()
}

func (c *Config) applyTraceDefaults() {
	if c.Trace.Endpoint == "" {
		c.Trace.Endpoint = EndpointStdout
	}
	// Only set when nil (unset). If explicitly set to false, preserve it.
	if c.Enabled && c.Trace.Enabled == nil {
		c.Trace.Enabled = BoolPtr(true)
	}
	if c.Trace.Protocol == "" {
		c.Trace.Protocol = ProtocolHTTP
	}
	if c.Trace.Compression == "" {
		c.Trace.Compression = CompressionGzip
	}
	if c.Trace.SampleRate == nil {
		c.Trace.SampleRate = Float64Ptr(1.0)
	}

	// Development: export fast for a near-instant view of spans
	dev := c.Environment == EnvironmentDevelopment || c.Trace.Endpoint == EndpointStdout
	if c.Trace.BatchTimeout == 0 {
		c.Trace.BatchTimeout = 5 * time.Second
		if dev {
			c.Trace.BatchTimeout = 500 * time.Millisecond
		}
	}
	if c.Trace.ExportTimeout == 0 {
		c.Trace.ExportTimeout = 60 * time.Second
		if dev {
			c.Trace.ExportTimeout = 10 * time.Second
		}
	}
}

func (c *Config) applyMetricsDefaults() {
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = EndpointStdout
	}
	if c.Enabled && c.Metrics.Enabled == nil {
		c.Metrics.Enabled = BoolPtr(true)
	}
	if c.Metrics.Protocol == "" {
		c.Metrics.Protocol = c.Trace.Protocol
	}
	if c.Metrics.Insecure == nil {
		c.Metrics.Insecure = BoolPtr(c.Trace.Insecure)
	}
	if len(c.Metrics.Headers) == 0 && len(c.Trace.Headers) > 0 {
		c.Metrics.Headers = make(map[string]string, len(c.Trace.Headers))
		for k, v := range c.Trace.Headers {
			c.Metrics.Headers[k] = v
		}
	}
	if c.Metrics.Compression == "" {
		c.Metrics.Compression = CompressionGzip
	}
	if c.Metrics.Temporality == "" {
		c.Metrics.Temporality = TemporalityCumulative
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 10 * time.Second
	}
	if c.Metrics.ExportTimeout == 0 {
		c.Metrics.ExportTimeout = 60 * time.Second
		if c.Environment == EnvironmentDevelopment || c.Metrics.Endpoint == EndpointStdout {
			c.Metrics.ExportTimeout = 10 * time.Second
		}
	}
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if !c.Enabled {
		return nil
	}
	if err := c.validateTraceConfig(); err != nil {
		return err
	}
	return c.validateMetricsConfig()
}

// validateEndpointFormat checks that the endpoint format matches the protocol.
// gRPC endpoints must use "host:port" format without http:// or https:// scheme.
// HTTP endpoints must include the http:// or https:// scheme.
func validateEndpointFormat(endpoint, protocol string) error {
	if endpoint == EndpointStdout || endpoint == "" {
		return nil
	}

	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
	if protocol == ProtocolGRPC && hasScheme {
		return ErrInvalidEndpointFormat
	}
	if protocol == ProtocolHTTP && !hasScheme {
		return ErrInvalidEndpointFormat
	}
	return nil
}

func validateProtocol(protocol string) error {
	switch protocol {
	case "", ProtocolHTTP, ProtocolGRPC:
		return nil
	default:
		return ErrInvalidProtocol
	}
}

func validateCompression(compression string) error {
	switch compression {
	case "", CompressionGzip, CompressionNone:
		return nil
	default:
		return ErrInvalidCompression
	}
}

func (c *Config) validateTraceConfig() error {
	if c.Trace.SampleRate != nil {
		rate := *c.Trace.SampleRate
		if rate < 0.0 || rate > 1.0 {
			return ErrInvalidSampleRate
		}
	}
	if err := validateCompression(c.Trace.Compression); err != nil {
		return err
	}
	if err := validateProtocol(c.Trace.Protocol); err != nil {
		return err
	}

	protocol := c.Trace.Protocol
	if protocol == "" {
		protocol = ProtocolHTTP
	}
	return validateEndpointFormat(c.Trace.Endpoint, protocol)
}

func (c *Config) validateMetricsConfig() error {
	if c.Metrics.Enabled != nil && !*c.Metrics.Enabled {
		return nil
	}
	if err := validateCompression(c.Metrics.Compression); err != nil {
		return err
	}
	switch c.Metrics.Temporality {
	case "", TemporalityDelta, TemporalityCumulative:
	default:
		return ErrInvalidTemporality
	}
	if err := validateProtocol(c.Metrics.Protocol); err != nil {
		return err
	}

	protocol := c.Metrics.Protocol
	if protocol == "" {
		protocol = c.Trace.Protocol
	}
	if protocol == "" {
		protocol = ProtocolHTTP
	}
	return validateEndpointFormat(c.Metrics.Endpoint, protocol)
}
