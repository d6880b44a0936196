package transport

import "net/http"

const (
	headerAuthorization = "Authorization"

	// RedactedAuthorization is logged in place of the Authorization header value.
	RedactedAuthorization = "Bearer ***REDACTED***"
)

// authorize stamps the bearer token on req, replacing any previous value.
// A nil request is a programming error.
func authorize(req *http.Request, token string) {
	if req == nil {
		panic("transport: authorize called with nil request")
	}
	req.Header.Set(headerAuthorization, "Bearer "+token)
}
