package transport

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/panoramicdata/solidtime-go/logger"
)

const (
	defaultMediaType  = "application/json"
	defaultCharset    = "utf-8"
	headerContentType = "Content-Type"
)

// Recorder logs outgoing requests and incoming responses at debug level.
// Bodies are read fully for logging and then re-exposed with the same bytes
// so the network layer and the caller's decoder can still consume them.
//
// A nil *Recorder is valid and does nothing.
type Recorder struct {
	log     logger.Logger
	verbose bool
}

// NewRecorder creates a recorder. It is active only when verbose is set and
// log emits debug events.
func NewRecorder(log logger.Logger, verbose bool) *Recorder {
	return &Recorder{log: log, verbose: verbose}
}

// ForCall returns r when diagnostics are enabled, nil otherwise. The
// transport evaluates it once per call so disabled logging costs no buffering.
func (r *Recorder) ForCall() *Recorder {
	if r == nil || !r.verbose || !logger.DebugEnabled(r.log) {
		return nil
	}
	return r
}

// BeforeSend logs method, URI, headers and body of req. The Authorization
// header is never printed.
func (r *Recorder) BeforeSend(req *http.Request) {
	if r == nil || req == nil {
		return
	}

	ev := r.log.Debug().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("uri", req.URL.String()).
		Interface("headers", headerFields(req.Header))

	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		ev = ev.Str("body", decodeForLog(b, req.Header))
		if err != nil {
			ev = ev.Err(err)
		}
		req.Body = rewrap(b, err)
		req.GetBody = nil
		if err == nil {
			body := b
			req.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(body)), nil
			}
			req.ContentLength = int64(len(b))
		}
		applyContentDefaults(req.Header, b)
	}

	ev.Msg("HTTP request")
}

// AfterReceive logs status, reason phrase, headers and body of resp.
func (r *Recorder) AfterReceive(resp *http.Response) {
	if r == nil || resp == nil {
		return
	}

	ev := r.log.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Str("reason", reasonPhrase(resp)).
		Interface("headers", headerFields(resp.Header))

	if resp.Body != nil && resp.Body != http.NoBody {
		b, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if text := decodeForLog(b, resp.Header); strings.TrimSpace(text) != "" {
			ev = ev.Str("body", text)
		}
		if err != nil {
			ev = ev.Err(err)
		} else {
			resp.ContentLength = int64(len(b))
		}
		resp.Body = rewrap(b, err)
		applyContentDefaults(resp.Header, b)
	}

	ev.Msg("HTTP response")
}

// headerFields flattens h for logging, joining multiple values with ", "
// and masking Authorization.
func headerFields(h http.Header) map[string]string {
	fields := make(map[string]string, len(h))
	for k, v := range h {
		if strings.EqualFold(k, headerAuthorization) {
			fields[k] = RedactedAuthorization
			continue
		}
		fields[k] = strings.Join(v, ", ")
	}
	return fields
}

func reasonPhrase(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason, ok := strings.CutPrefix(resp.Status, code+" "); ok {
		return reason
	}
	if resp.Status != "" && resp.Status != code {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

// contentType returns the declared media type and charset of h, defaulting
// to application/json and utf-8.
func contentType(h http.Header) (mediaType, charset string) {
	mediaType, charset = defaultMediaType, defaultCharset
	ct := h.Get(headerContentType)
	if ct == "" {
		return mediaType, charset
	}
	mt, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return mediaType, charset
	}
	if mt != "" {
		mediaType = mt
	}
	if cs := params["charset"]; cs != "" {
		charset = cs
	}
	return mediaType, charset
}

// applyContentDefaults declares the default media type and charset on a
// rewrapped body that arrived without a Content-Type.
func applyContentDefaults(h http.Header, body []byte) {
	if len(body) == 0 || h.Get(headerContentType) != "" {
		return
	}
	mediaType, charset := contentType(h)
	h.Set(headerContentType, mime.FormatMediaType(mediaType, map[string]string{"charset": charset}))
}

// decodeForLog renders body as UTF-8 text according to the declared charset.
// Unknown charsets are logged as raw bytes.
func decodeForLog(body []byte, h http.Header) string {
	_, charset := contentType(h)
	if strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		return string(body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// rewrap exposes b as a fresh body. When the original read failed midway,
// the new body yields the bytes read so far followed by the same error.
func rewrap(b []byte, readErr error) io.ReadCloser {
	if readErr == nil {
		return io.NopCloser(bytes.NewReader(b))
	}
	return io.NopCloser(io.MultiReader(bytes.NewReader(b), errReader{err: readErr}))
}

type errReader struct{ err error }

func (e errReader) Read(_ []byte) (int, error) { return 0, e.err }
