// Package transport provides the authenticated, rate-limit aware
// http.RoundTripper that every Solidtime API call goes through.
//
// Per call, the Transport:
//   - buffers the request body once so each attempt sends an independent replica
//   - stamps "Authorization: Bearer <token>" and an X-Request-ID shared by all attempts
//   - optionally logs request and response (method, URI, headers, bodies) at
//     debug level, masking the Authorization header and re-exposing bodies so
//     they stay readable downstream
//   - retries HTTP 429 responses up to MaxRetries times
//
// Backoff Strategy
//   - Retry-After as delta-seconds is used as-is.
//   - Retry-After as an HTTP date, then X-RateLimit-Reset (Unix seconds), are
//     used when they lie strictly in the future; otherwise the next rule applies.
//   - Fallback: InitialBackoff * 2^attempt (1s, 2s, 4s by default).
//
// Notes
//   - No other status and no transport error is retried.
//   - Once retries are exhausted the final 429 response is returned as-is.
//   - Cancellation during a send or a backoff wait aborts the call with the
//     context error; the overall deadline belongs to http.Client.Timeout.
package transport
