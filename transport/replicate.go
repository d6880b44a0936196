package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// snapshot holds everything needed to rebuild a request for another attempt.
// Request objects are single-use once handed to the network layer, so each
// attempt sends its own replica.
type snapshot struct {
	req  *http.Request
	body []byte
}

// newSnapshot buffers the body of req into memory and closes it.
func newSnapshot(req *http.Request) (*snapshot, error) {
	s := &snapshot{req: req}
	if req.Body == nil || req.Body == http.NoBody {
		return s, nil
	}

	b, err := io.ReadAll(req.Body)
	closeErr := req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("transport: buffer request body: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("transport: close request body: %w", closeErr)
	}
	s.body = b
	return s, nil
}

func (s *snapshot) hasBody() bool {
	return len(s.body) > 0
}

// replicate returns an independent copy of the original request bound to ctx.
// Headers are copied verbatim without revalidation.
func (s *snapshot) replicate(ctx context.Context) *http.Request {
	r := s.req.Clone(ctx)
	if !s.hasBody() {
		if r.Body != nil {
			r.Body = http.NoBody
		}
		r.GetBody = nil
		r.ContentLength = 0
		return r
	}

	body := s.body
	r.Body = io.NopCloser(bytes.NewReader(body))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	r.ContentLength = int64(len(body))
	return r
}
