package transport

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// HeaderRetryAfter carries delta-seconds or an HTTP date.
	HeaderRetryAfter = "Retry-After"
	// HeaderRateLimitReset carries the Unix time (seconds) at which the quota resets.
	HeaderRateLimitReset = "X-RateLimit-Reset"

	// maxShift bounds the exponent of the fallback to keep the multiplication in range.
	maxShift = 30
)

// BackoffPolicy derives the wait before the next attempt from a rate-limited
// response. Server hints win over the exponential fallback, but only when
// they point strictly into the future.
type BackoffPolicy struct {
	// InitialBackoff is the fallback delay for attempt 0.
	InitialBackoff time.Duration

	now func() time.Time
}

// NewBackoffPolicy creates a policy with the given fallback base delay.
func NewBackoffPolicy(initial time.Duration) *BackoffPolicy {
	if initial <= 0 {
		initial = DefaultInitialBackoff
	}
	return &BackoffPolicy{InitialBackoff: initial, now: time.Now}
}

// Delay returns how long to wait after resp before attempt+1 is sent.
// Precedence: Retry-After delta-seconds, Retry-After HTTP date,
// X-RateLimit-Reset, then InitialBackoff * 2^attempt.
func (p *BackoffPolicy) Delay(resp *http.Response, attempt int) time.Duration {
	now := p.clock()

	if resp != nil {
		if d, ok := retryAfter(resp.Header.Get(HeaderRetryAfter), now); ok {
			return d
		}
		if d, ok := rateLimitReset(resp.Header.Get(HeaderRateLimitReset), now); ok {
			return d
		}
	}

	return p.exponential(attempt)
}

func (p *BackoffPolicy) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

func (p *BackoffPolicy) exponential(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	return p.InitialBackoff * time.Duration(1<<attempt)
}

// retryAfter parses a Retry-After value. Delta-seconds are returned as-is;
// a date is only honored when it lies after now.
func retryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		if secs < 0 || secs > int64(math.MaxInt64/time.Second) {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}

	at, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	if d := at.Sub(now); d > 0 {
		return d, true
	}
	return 0, false
}

// rateLimitReset parses a Unix timestamp in seconds and returns the time
// remaining until it, if positive.
func rateLimitReset(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	epoch, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	if d := time.Unix(epoch, 0).Sub(now); d > 0 {
		return d, true
	}
	return 0, false
}
