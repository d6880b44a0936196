package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaultsDisabled(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultServiceName, cfg.Service.Name)
	assert.Equal(t, "unknown", cfg.Service.Version)
	assert.Equal(t, EnvironmentDevelopment, cfg.Environment)
	assert.Nil(t, cfg.Trace.Enabled, "trace stays unset while observability is disabled")
	assert.Nil(t, cfg.Metrics.Enabled)
	assert.Equal(t, EndpointStdout, cfg.Trace.Endpoint)
	assert.Equal(t, ProtocolHTTP, cfg.Trace.Protocol)
}

func TestApplyDefaultsEnabled(t *testing.T) {
	cfg := Config{
		Enabled: true,
		Service: ServiceConfig{Name: "time-sync"},
		Trace: TraceConfig{
			Endpoint: "https://otlp.example.com:4318",
			Headers:  map[string]string{"api-key": "k"},
		},
		Environment: "production",
	}
	cfg.ApplyDefaults()

	require.NotNil(t, cfg.Trace.Enabled)
	assert.True(t, *cfg.Trace.Enabled)
	require.NotNil(t, cfg.Metrics.Enabled)
	assert.True(t, *cfg.Metrics.Enabled)
	assert.Equal(t, "time-sync", cfg.Service.Name)
	assert.Equal(t, CompressionGzip, cfg.Trace.Compression)
	require.NotNil(t, cfg.Trace.SampleRate)
	assert.InDelta(t, 1.0, *cfg.Trace.SampleRate, 0.0001)
	assert.Equal(t, 5*time.Second, cfg.Trace.BatchTimeout)
	assert.Equal(t, 60*time.Second, cfg.Trace.ExportTimeout)

	assert.Equal(t, ProtocolHTTP, cfg.Metrics.Protocol)
	assert.Equal(t, TemporalityCumulative, cfg.Metrics.Temporality)
	assert.Equal(t, 10*time.Second, cfg.Metrics.Interval)
	assert.Equal(t, map[string]string{"api-key": "k"}, cfg.Metrics.Headers)

	cfg.Metrics.Headers["api-key"] = "changed"
	assert.Equal(t, "k", cfg.Trace.Headers["api-key"], "metric headers must not alias trace headers")
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Enabled: true,
		Trace: TraceConfig{
			Enabled:    BoolPtr(false),
			SampleRate: Float64Ptr(0.25),
		},
		Metrics: MetricsConfig{Insecure: BoolPtr(true), Interval: time.Minute},
	}
	cfg.ApplyDefaults()

	assert.False(t, *cfg.Trace.Enabled)
	assert.InDelta(t, 0.25, *cfg.Trace.SampleRate, 0.0001)
	assert.True(t, *cfg.Metrics.Insecure)
	assert.Equal(t, time.Minute, cfg.Metrics.Interval)
	assert.Equal(t, 500*time.Millisecond, cfg.Trace.BatchTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{name: "nil config", cfg: nil, wantErr: ErrNilConfig},
		{name: "disabled skips validation", cfg: &Config{Trace: TraceConfig{Protocol: "smtp"}}},
		{name: "stdout", cfg: &Config{Enabled: true, Trace: TraceConfig{Endpoint: EndpointStdout}}},
		{
			name:    "sample rate above one",
			cfg:     &Config{Enabled: true, Trace: TraceConfig{SampleRate: Float64Ptr(1.5)}},
			wantErr: ErrInvalidSampleRate,
		},
		{
			name:    "unknown protocol",
			cfg:     &Config{Enabled: true, Trace: TraceConfig{Protocol: "smtp", Endpoint: "localhost:4317"}},
			wantErr: ErrInvalidProtocol,
		},
		{
			name:    "grpc endpoint with scheme",
			cfg:     &Config{Enabled: true, Trace: TraceConfig{Protocol: ProtocolGRPC, Endpoint: "http://localhost:4317"}},
			wantErr: ErrInvalidEndpointFormat,
		},
		{
			name:    "http endpoint without scheme",
			cfg:     &Config{Enabled: true, Trace: TraceConfig{Protocol: ProtocolHTTP, Endpoint: "localhost:4318"}},
			wantErr: ErrInvalidEndpointFormat,
		},
		{
			name:    "bad compression",
			cfg:     &Config{Enabled: true, Trace: TraceConfig{Compression: "zstd"}},
			wantErr: ErrInvalidCompression,
		},
		{
			name:    "bad temporality",
			cfg:     &Config{Enabled: true, Metrics: MetricsConfig{Temporality: "sometimes"}},
			wantErr: ErrInvalidTemporality,
		},
		{
			name: "metrics inherit grpc protocol",
			cfg: &Config{Enabled: true,
				Trace:   TraceConfig{Protocol: ProtocolGRPC, Endpoint: "collector:4317"},
				Metrics: MetricsConfig{Endpoint: "http://collector:4318"},
			},
			wantErr: ErrInvalidEndpointFormat,
		},
		{
			name: "disabled metrics are not validated",
			cfg: &Config{Enabled: true,
				Metrics: MetricsConfig{Enabled: BoolPtr(false), Temporality: "sometimes"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
