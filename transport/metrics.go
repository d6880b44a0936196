package transport

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/panoramicdata/solidtime-go/logger"
	"github.com/panoramicdata/solidtime-go/observability"
)

const (
	instrumentationName = "github.com/panoramicdata/solidtime-go/transport"

	metricAttempts        = "solidtime.client.attempts"
	metricRateLimited     = "solidtime.client.rate_limited"
	metricBackoffDuration = "solidtime.client.backoff.duration"
)

// instruments holds the metric instruments of one Transport. A nil
// instrument is skipped, so a failed registration never affects requests.
type instruments struct {
	attempts    metric.Int64Counter
	rateLimited metric.Int64Counter
	backoff     metric.Float64Histogram
}

func newInstruments(mp metric.MeterProvider, log logger.Logger) *instruments {
	meter := mp.Meter(instrumentationName)
	ins := &instruments{}

	var err error
	ins.attempts, err = observability.CreateCounter(meter, metricAttempts,
		"Number of HTTP attempts sent to the Solidtime API")
	logMetricError(log, metricAttempts, err)

	ins.rateLimited, err = observability.CreateCounter(meter, metricRateLimited,
		"Number of rate-limited (429) responses received")
	logMetricError(log, metricRateLimited, err)

	ins.backoff, err = observability.CreateHistogram(meter, metricBackoffDuration,
		"Backoff waits before retrying a rate-limited request", metric.WithUnit("ms"))
	logMetricError(log, metricBackoffDuration, err)

	return ins
}

func logMetricError(log logger.Logger, name string, err error) {
	if err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("Failed to initialize metric")
	}
}

func (i *instruments) recordAttempt(ctx context.Context, method string, status int, err error) {
	if i.attempts == nil {
		return
	}
	outcome := strconv.Itoa(status)
	if err != nil {
		outcome = "error"
	}
	i.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("outcome", outcome),
	))
}

func (i *instruments) recordRateLimited(ctx context.Context, exhausted bool) {
	if i.rateLimited == nil {
		return
	}
	i.rateLimited.Add(ctx, 1, metric.WithAttributes(attribute.Bool("exhausted", exhausted)))
}

func (i *instruments) recordBackoff(ctx context.Context, d time.Duration) {
	if i.backoff == nil {
		return
	}
	i.backoff.Record(ctx, float64(d.Nanoseconds())/1e6)
}
