package observability

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/panoramicdata/solidtime-go/logger"
)

// syncBuffer is written by exporter goroutines and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
	})
}

func TestNewProviderNilConfig(t *testing.T) {
	_, err := NewProvider(nil, nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNewProviderDisabledReturnsNoop(t *testing.T) {
	p, err := NewProvider(&Config{}, logger.Nop())
	require.NoError(t, err)

	_, ok := p.(*noopProvider)
	assert.True(t, ok)
	assert.NoError(t, p.ForceFlush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderInvalidConfig(t *testing.T) {
	_, err := NewProvider(&Config{Enabled: true, Trace: TraceConfig{SampleRate: Float64Ptr(-1)}}, nil)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}

func TestNewProviderDoesNotMutateCallerConfig(t *testing.T) {
	resetGlobals(t)
	cfg := &Config{Enabled: true, Metrics: MetricsConfig{Enabled: BoolPtr(false)}}

	p, err := NewProvider(cfg, nil, WithConsoleWriter(&syncBuffer{}))
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	assert.Empty(t, cfg.Trace.Endpoint)
	assert.Nil(t, cfg.Trace.Enabled)
}

func TestNewProviderStdoutExporters(t *testing.T) {
	resetGlobals(t)
	var out syncBuffer

	p, err := NewProvider(&Config{
		Enabled: true,
		Service: ServiceConfig{Name: "solidtime-cli", Version: "1.2.3"},
	}, nil, WithConsoleWriter(&out))
	require.NoError(t, err)

	_, span := p.TracerProvider().Tracer("test").Start(context.Background(), "list-projects")
	span.End()

	counter, err := CreateCounter(p.MeterProvider().Meter("test"), "solidtime.test.calls", "test calls")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	require.NoError(t, Shutdown(p, 5*time.Second))

	assert.Contains(t, out.String(), "list-projects")
	assert.Contains(t, out.String(), "solidtime.test.calls")
	assert.Contains(t, out.String(), "solidtime-cli")
}

func TestNewProviderOTLPTrace(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
		endpoint string
	}{
		{name: "http", protocol: ProtocolHTTP, endpoint: "http://127.0.0.1:4318"},
		{name: "grpc", protocol: ProtocolGRPC, endpoint: "127.0.0.1:4317"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)
			p, err := NewProvider(&Config{
				Enabled: true,
				Trace: TraceConfig{
					Endpoint:    tt.endpoint,
					Protocol:    tt.protocol,
					Insecure:    true,
					Headers:     map[string]string{"x-api-key": "secret"},
					Compression: CompressionNone,
				},
				Metrics: MetricsConfig{Enabled: BoolPtr(false)},
			}, nil)
			require.NoError(t, err)

			assert.Same(t, p.TracerProvider(), otel.GetTracerProvider())
			_, isNoop := p.MeterProvider().(metricnoop.MeterProvider)
			assert.True(t, isNoop)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			assert.NoError(t, p.Shutdown(ctx))
		})
	}
}

func TestCreateMetricExporters(t *testing.T) {
	tests := []struct {
		name        string
		protocol    string
		endpoint    string
		temporality string
	}{
		{name: "http cumulative", protocol: ProtocolHTTP, endpoint: "http://127.0.0.1:4318", temporality: TemporalityCumulative},
		{name: "grpc delta", protocol: ProtocolGRPC, endpoint: "127.0.0.1:4317", temporality: TemporalityDelta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Enabled: true,
				Trace:   TraceConfig{Protocol: tt.protocol, Insecure: true},
				Metrics: MetricsConfig{Endpoint: tt.endpoint, Temporality: tt.temporality},
			}
			cfg.ApplyDefaults()
			p := &provider{config: cfg, log: logger.Nop()}

			exp, err := p.createMetricExporter()
			require.NoError(t, err)
			assert.NoError(t, exp.Shutdown(context.Background()))
		})
	}
}

func TestShutdownNilProvider(t *testing.T) {
	assert.NoError(t, Shutdown(nil, time.Second))
}
