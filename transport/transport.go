package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/panoramicdata/solidtime-go/logger"
	"github.com/panoramicdata/solidtime-go/trace"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt
	DefaultMaxRetries = 3

	// DefaultInitialBackoff is the fallback delay before the first retry
	DefaultInitialBackoff = 1 * time.Second

	// maxDrain bounds how much of a discarded response body is read so the
	// connection can be reused.
	maxDrain = 64 << 10
)

var (
	// ErrMissingToken is returned by Build when no bearer token is configured.
	ErrMissingToken = errors.New("transport: bearer token is required")
	// ErrInvalidRetries is returned by Build for a negative retry count or a
	// non-positive initial backoff.
	ErrInvalidRetries = errors.New("transport: invalid retry configuration")
)

// Config holds the transport configuration. It is read-only once the
// Transport is built.
type Config struct {
	Token          string
	Verbose        bool
	MaxRetries     int
	InitialBackoff time.Duration
	Base           http.RoundTripper
	TracerProvider oteltrace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Builder provides a fluent interface for configuring the transport
type Builder struct {
	config *Config
	logger logger.Logger
}

// NewBuilder creates a new transport builder with default retry settings
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: &Config{
			MaxRetries:     DefaultMaxRetries,
			InitialBackoff: DefaultInitialBackoff,
		},
		logger: log,
	}
}

// WithToken sets the bearer token stamped on every request
func (b *Builder) WithToken(token string) *Builder {
	b.config.Token = token
	return b
}

// WithRetries sets the retry ceiling and the fallback backoff base
func (b *Builder) WithRetries(maxRetries int, initialBackoff time.Duration) *Builder {
	b.config.MaxRetries = maxRetries
	b.config.InitialBackoff = initialBackoff
	return b
}

// WithVerbose enables request/response diagnostics at debug level
func (b *Builder) WithVerbose(verbose bool) *Builder {
	b.config.Verbose = verbose
	return b
}

// WithBase sets the underlying round tripper
func (b *Builder) WithBase(base http.RoundTripper) *Builder {
	b.config.Base = base
	return b
}

// WithTracerProvider sets the tracer provider used for call spans
func (b *Builder) WithTracerProvider(tp oteltrace.TracerProvider) *Builder {
	b.config.TracerProvider = tp
	return b
}

// WithMeterProvider sets the meter provider used for retry metrics
func (b *Builder) WithMeterProvider(mp metric.MeterProvider) *Builder {
	b.config.MeterProvider = mp
	return b
}

// Build validates the configuration and creates the transport
func (b *Builder) Build() (*Transport, error) {
	return New(*b.config, b.logger)
}

// Transport is an http.RoundTripper that authenticates, logs and retries
// rate-limited calls. It holds no per-call state and is safe for concurrent use.
type Transport struct {
	base       http.RoundTripper
	token      string
	maxRetries int
	backoff    *BackoffPolicy
	recorder   *Recorder
	log        logger.Logger
	tracer     oteltrace.Tracer
	metrics    *instruments
}

var _ http.RoundTripper = (*Transport)(nil)

// New creates a Transport from cfg. When cfg.Base is nil the default
// net/http transport is used, instrumented with otelhttp.
func New(cfg Config, log logger.Logger) (*Transport, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingToken
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries %d must not be negative", ErrInvalidRetries, cfg.MaxRetries)
	}
	if cfg.InitialBackoff <= 0 {
		return nil, fmt.Errorf("%w: initial backoff %v must be positive", ErrInvalidRetries, cfg.InitialBackoff)
	}
	if log == nil {
		log = logger.Nop()
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	base := cfg.Base
	if base == nil {
		base = otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithMeterProvider(mp),
		)
	}

	return &Transport{
		base:       base,
		token:      cfg.Token,
		maxRetries: cfg.MaxRetries,
		backoff:    NewBackoffPolicy(cfg.InitialBackoff),
		recorder:   NewRecorder(log, cfg.Verbose),
		log:        log,
		tracer:     tp.Tracer(instrumentationName),
		metrics:    newInstruments(mp, log),
	}, nil
}

// RoundTrip sends req, retrying HTTP 429 responses with backoff. Any other
// status is returned unchanged; transport errors and cancellation are returned
// immediately. Each attempt sends a fresh replica of req.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		panic("transport: RoundTrip called with nil request")
	}

	ctx, span := t.tracer.Start(req.Context(), "solidtime.request",
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.Redacted()),
		),
	)
	defer span.End()

	requestID := req.Header.Get(trace.HeaderXRequestID)
	if requestID == "" {
		requestID = trace.EnsureRequestID(ctx)
	}

	snap, err := newSnapshot(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rec := t.recorder.ForCall()

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		out := snap.replicate(ctx)
		authorize(out, t.token)
		out.Header.Set(trace.HeaderXRequestID, requestID)
		rec.BeforeSend(out)

		resp, err := t.base.RoundTrip(out)
		if err != nil {
			t.metrics.recordAttempt(ctx, req.Method, 0, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		t.metrics.recordAttempt(ctx, req.Method, resp.StatusCode, nil)
		rec.AfterReceive(resp)

		if resp.StatusCode != http.StatusTooManyRequests {
			span.SetAttributes(
				attribute.Int("http.response.status_code", resp.StatusCode),
				attribute.Int("solidtime.attempts", attempt+1),
			)
			return resp, nil
		}

		if attempt >= t.maxRetries {
			t.metrics.recordRateLimited(ctx, true)
			t.log.Warn().
				Str("request_id", requestID).
				Str("method", req.Method).
				Str("uri", req.URL.Redacted()).
				Int("attempts", attempt+1).
				Msg("Rate limit retries exhausted")
			span.SetAttributes(
				attribute.Int("http.response.status_code", resp.StatusCode),
				attribute.Int("solidtime.attempts", attempt+1),
			)
			return resp, nil
		}
		t.metrics.recordRateLimited(ctx, false)

		delay := t.backoff.Delay(resp, attempt)
		t.metrics.recordBackoff(ctx, delay)
		t.log.Warn().
			Str("request_id", requestID).
			Str("method", req.Method).
			Str("uri", req.URL.Redacted()).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Rate limited, backing off")
		span.AddEvent("rate_limited", oteltrace.WithAttributes(
			attribute.Int("attempt", attempt+1),
			attribute.Int64("delay_ms", delay.Milliseconds()),
		))

		err = wait(ctx, delay)
		discard(resp)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	panic("transport: retry loop exited without a terminal outcome")
}

// wait blocks for d or until ctx is done, whichever comes first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// discard releases a response that will not be returned to the caller.
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	_ = resp.Body.Close()
}
