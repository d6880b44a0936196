package solidtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/panoramicdata/solidtime-go/config"
	"github.com/panoramicdata/solidtime-go/logger"
	"github.com/panoramicdata/solidtime-go/transport"
)

const (
	headerAccept      = "Accept"
	headerContentType = "Content-Type"
	mediaTypeJSON     = "application/json"
)

// Client is the entry point to the Solidtime API.
type Client struct {
	Me       *MeService
	Projects *ProjectsService

	httpClient *http.Client
	baseURL    string
	strictJSON bool
	log        logger.Logger
}

// Option customises how New builds the client.
type Option func(*options)

type options struct {
	base           http.RoundTripper
	tracerProvider oteltrace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithBaseTransport replaces the RoundTripper beneath the resilient transport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.base = rt
	}
}

// WithTracerProvider sets the provider used for call spans.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider used for retry metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// New validates cfg and builds a client whose calls go through the
// resilient transport.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*Client, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithFields(map[string]any{"component": "solidtime"})

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	rt, err := transport.NewBuilder(log).
		WithToken(cfg.Client.Token).
		WithRetries(cfg.Client.MaxRetries, cfg.Client.InitialBackoff).
		WithVerbose(cfg.Client.Verbose).
		WithBase(o.base).
		WithTracerProvider(o.tracerProvider).
		WithMeterProvider(o.meterProvider).
		Build()
	if err != nil {
		return nil, fmt.Errorf("solidtime: build transport: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.Client.Timeout,
		},
		baseURL:    strings.TrimRight(cfg.Client.BaseURL, "/"),
		strictJSON: cfg.Client.StrictJSON,
		log:        log,
	}
	c.Me = &MeService{client: c}
	c.Projects = &ProjectsService{client: c}
	return c, nil
}

// HTTPClient exposes the underlying client for endpoints the SDK does not
// wrap yet. Requests sent through it are authenticated and retried.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// do sends one API call. in, when non-nil, is encoded as the JSON body; out,
// when non-nil, receives the decoded 2xx response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	req, err := c.newRequest(ctx, method, path, query, in)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("solidtime: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("solidtime: %s %s: read response: %w", method, path, err)
	}

	if !isSuccessStatus(resp.StatusCode) {
		apiErr := newAPIError(method, path, resp.StatusCode, body)
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("API call failed")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := c.decode(body, out); err != nil {
		return fmt.Errorf("solidtime: %s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("solidtime: %s %s: encode request: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("solidtime: %s %s: %w", method, path, err)
	}
	req.Header.Set(headerAccept, mediaTypeJSON)
	if in != nil {
		req.Header.Set(headerContentType, mediaTypeJSON)
	}
	return req, nil
}

func (c *Client) decode(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if c.strictJSON {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(out)
}
