package transport

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func newTestPolicy(initial time.Duration) *BackoffPolicy {
	p := NewBackoffPolicy(initial)
	p.now = func() time.Time { return fixedNow }
	return p
}

func rateLimited(headers map[string]string) *http.Response {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: make(http.Header)}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestNewBackoffPolicyDefaults(t *testing.T) {
	assert.Equal(t, DefaultInitialBackoff, NewBackoffPolicy(0).InitialBackoff)
	assert.Equal(t, DefaultInitialBackoff, NewBackoffPolicy(-time.Second).InitialBackoff)
	assert.Equal(t, 5*time.Millisecond, NewBackoffPolicy(5*time.Millisecond).InitialBackoff)
}

func TestBackoffDelay(t *testing.T) {
	future := fixedNow.Add(10 * time.Second)
	past := fixedNow.Add(-10 * time.Second)
	resetFuture := strconv.FormatInt(fixedNow.Add(30*time.Second).Unix(), 10)
	resetPast := strconv.FormatInt(fixedNow.Add(-30*time.Second).Unix(), 10)

	tests := []struct {
		name     string
		headers  map[string]string
		attempt  int
		expected time.Duration
	}{
		{
			name:     "retry-after seconds",
			headers:  map[string]string{HeaderRetryAfter: "5"},
			expected: 5 * time.Second,
		},
		{
			name:     "retry-after zero seconds used as is",
			headers:  map[string]string{HeaderRetryAfter: "0"},
			attempt:  2,
			expected: 0,
		},
		{
			name:     "retry-after seconds wins over reset",
			headers:  map[string]string{HeaderRetryAfter: "2", HeaderRateLimitReset: resetFuture},
			expected: 2 * time.Second,
		},
		{
			name:     "retry-after date in the future",
			headers:  map[string]string{HeaderRetryAfter: future.Format(http.TimeFormat)},
			expected: 10 * time.Second,
		},
		{
			name:     "retry-after date in the past falls through to reset",
			headers:  map[string]string{HeaderRetryAfter: past.Format(http.TimeFormat), HeaderRateLimitReset: resetFuture},
			expected: 30 * time.Second,
		},
		{
			name:     "retry-after date now falls through to exponential",
			headers:  map[string]string{HeaderRetryAfter: fixedNow.Format(http.TimeFormat)},
			attempt:  1,
			expected: 2 * time.Second,
		},
		{
			name:     "rate limit reset in the future",
			headers:  map[string]string{HeaderRateLimitReset: resetFuture},
			expected: 30 * time.Second,
		},
		{
			name:     "rate limit reset in the past falls through",
			headers:  map[string]string{HeaderRateLimitReset: resetPast},
			attempt:  2,
			expected: 4 * time.Second,
		},
		{
			name:     "malformed retry-after falls through",
			headers:  map[string]string{HeaderRetryAfter: "soon"},
			expected: time.Second,
		},
		{
			name:     "negative retry-after falls through",
			headers:  map[string]string{HeaderRetryAfter: "-5"},
			attempt:  1,
			expected: 2 * time.Second,
		},
		{
			name:     "malformed reset falls through",
			headers:  map[string]string{HeaderRateLimitReset: "tomorrow"},
			expected: time.Second,
		},
		{
			name:     "no hints attempt 0",
			expected: time.Second,
		},
		{
			name:     "no hints attempt 1",
			attempt:  1,
			expected: 2 * time.Second,
		},
		{
			name:     "no hints attempt 2",
			attempt:  2,
			expected: 4 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPolicy(time.Second)
			assert.Equal(t, tt.expected, p.Delay(rateLimited(tt.headers), tt.attempt))
		})
	}
}

func TestBackoffDelayNilResponse(t *testing.T) {
	p := newTestPolicy(100 * time.Millisecond)
	assert.Equal(t, 400*time.Millisecond, p.Delay(nil, 2))
}

func TestBackoffExponentialIsBounded(t *testing.T) {
	p := newTestPolicy(time.Nanosecond)
	assert.Equal(t, time.Duration(1<<maxShift), p.Delay(nil, 1000))
	assert.Equal(t, time.Nanosecond, p.Delay(nil, -1))
}
