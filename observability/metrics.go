package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"google.golang.org/grpc/credentials/insecure"
)

// initMeterProvider initializes the OpenTelemetry meter provider.
func (p *provider) initMeterProvider() error {
	res, err := p.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := p.createMetricExporter()
	if err != nil {
		return fmt.Errorf("failed to create metric exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(p.config.Metrics.Interval),
		sdkmetric.WithTimeout(p.config.Metrics.ExportTimeout),
	)

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	return nil
}

// temporalitySelector maps the configured temporality onto the SDK selector.
// Up-down counters stay cumulative under delta, as backends expect.
func (p *provider) temporalitySelector() sdkmetric.TemporalitySelector {
	if p.config.Metrics.Temporality != TemporalityDelta {
		return sdkmetric.DefaultTemporalitySelector
	}
	return func(kind sdkmetric.InstrumentKind) metricdata.Temporality {
		switch kind {
		case sdkmetric.InstrumentKindUpDownCounter, sdkmetric.InstrumentKindObservableUpDownCounter:
			return metricdata.CumulativeTemporality
		default:
			return metricdata.DeltaTemporality
		}
	}
}

// createMetricExporter creates a metric exporter based on the configured endpoint.
func (p *provider) createMetricExporter() (sdkmetric.Exporter, error) {
	if p.config.Metrics.Endpoint == EndpointStdout {
		return stdoutmetric.New(
			stdoutmetric.WithWriter(p.console),
			stdoutmetric.WithPrettyPrint(),
			stdoutmetric.WithTemporalitySelector(p.temporalitySelector()),
		)
	}

	switch p.config.Metrics.Protocol {
	case ProtocolHTTP:
		return p.createOTLPHTTPMetricExporter()
	case ProtocolGRPC:
		return p.createOTLPGRPCMetricExporter()
	default:
		return nil, fmt.Errorf("metrics protocol '%s': %w", p.config.Metrics.Protocol, ErrInvalidProtocol)
	}
}

func (p *provider) createOTLPHTTPMetricExporter() (sdkmetric.Exporter, error) {
	cfg := p.config.Metrics
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(cfg.Endpoint),
		otlpmetrichttp.WithTimeout(cfg.ExportTimeout),
		otlpmetrichttp.WithTemporalitySelector(p.temporalitySelector()),
	}
	if cfg.Insecure != nil && *cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
	}
	if cfg.Compression == CompressionGzip {
		opts = append(opts, otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression))
	} else {
		opts = append(opts, otlpmetrichttp.WithCompression(otlpmetrichttp.NoCompression))
	}

	return otlpmetrichttp.New(context.Background(), opts...)
}

func (p *provider) createOTLPGRPCMetricExporter() (sdkmetric.Exporter, error) {
	cfg := p.config.Metrics
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithTimeout(cfg.ExportTimeout),
		otlpmetricgrpc.WithTemporalitySelector(p.temporalitySelector()),
	}
	if cfg.Insecure != nil && *cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
	}
	if cfg.Compression == CompressionGzip {
		opts = append(opts, otlpmetricgrpc.WithCompressor(CompressionGzip))
	}

	return otlpmetricgrpc.New(context.Background(), opts...)
}

// CreateCounter creates a new counter metric instrument.
// Counters are monotonically increasing values (e.g., attempt count, rate-limit hits).
func CreateCounter(meter metric.Meter, name, description string, opts ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return meter.Int64Counter(
		name,
		append([]metric.Int64CounterOption{
			metric.WithDescription(description),
		}, opts...)...,
	)
}

// CreateHistogram creates a new histogram metric instrument.
// Histograms record distributions of values (e.g., backoff waits).
//
// Example:
//
//	histogram, err := CreateHistogram(meter, "solidtime.client.backoff.duration", "Backoff waits", metric.WithUnit("ms"))
//	if err != nil {
//	    return err
//	}
//	histogram.Record(ctx, 1000)
func CreateHistogram(meter metric.Meter, name, description string, opts ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return meter.Float64Histogram(
		name,
		append([]metric.Float64HistogramOption{
			metric.WithDescription(description),
		}, opts...)...,
	)
}
