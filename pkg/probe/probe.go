package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"digital.vasic.contracts/pkg/logging"
)

// RequestIDHeader carries the per-probe correlation ID.
const RequestIDHeader = "X-Request-ID"

// bodyPreviewLimit caps how much of a response body is logged.
const bodyPreviewLimit = 512

// Prober sends one request and returns the normalized response.
// Implementations must not retry.
type Prober interface {
	Send(ctx context.Context, ep Endpoint, timeout time.Duration) (*Response, error)
}

// ProbeOption configures an HTTPProbe via functional options.
type ProbeOption func(*HTTPProbe)

// HTTPProbe is the net/http backed Prober.
type HTTPProbe struct {
	baseURL    string
	headers    map[string]string
	tokens     TokenSource
	httpClient *http.Client
	logger     logging.Logger
	newID      func() string
}

// keepRedirect stops the client at the first response: one Send
// is one request, and a 3xx is evaluated as received.
func keepRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// NewHTTPProbe creates a probe targeting baseURL.
func NewHTTPProbe(baseURL string, opts ...ProbeOption) *HTTPProbe {
	p := &HTTPProbe{
		baseURL:    baseURL,
		headers:    map[string]string{},
		httpClient: &http.Client{CheckRedirect: keepRedirect},
		logger:     logging.NullLogger{},
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) ProbeOption {
	return func(p *HTTPProbe) { p.httpClient = c }
}

// WithHeaders sets headers sent on every request. Endpoint
// headers override them.
func WithHeaders(h map[string]string) ProbeOption {
	return func(p *HTTPProbe) {
		for k, v := range h {
			p.headers[k] = v
		}
	}
}

// WithTokenSource enables bearer authentication.
func WithTokenSource(ts TokenSource) ProbeOption {
	return func(p *HTTPProbe) { p.tokens = ts }
}

// WithLogger sets the logger used for probe traffic.
func WithLogger(l logging.Logger) ProbeOption {
	return func(p *HTTPProbe) { p.logger = l }
}

// BaseURL returns the target base URL.
func (p *HTTPProbe) BaseURL() string {
	return p.baseURL
}

// Send performs exactly one request. Any HTTP status counts as a
// successful probe; only transport failures return an *Error.
// A positive timeout bounds the whole exchange including the
// body read.
func (p *HTTPProbe) Send(
	ctx context.Context, ep Endpoint, timeout time.Duration,
) (*Response, error) {
	target, err := ep.BuildURL(p.baseURL)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Err: err}
	}

	var body []byte
	if ep.Body != nil {
		body, err = json.Marshal(ep.Body)
		if err != nil {
			return nil, &Error{
				Kind: KindRequest, URL: target,
				Err: fmt.Errorf("encode body: %w", err),
			}
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(
		ctx, string(ep.Method), target, bytes.NewReader(body),
	)
	if err != nil {
		return nil, &Error{Kind: KindRequest, URL: target, Err: err}
	}
	if body == nil {
		req.Body = http.NoBody
		req.ContentLength = 0
	} else {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}
	if p.tokens != nil && req.Header.Get("Authorization") == "" {
		token, err := p.tokens.Token(ctx)
		if err != nil {
			return nil, &Error{
				Kind: KindRequest, URL: target,
				Err: fmt.Errorf("auth token: %w", err),
			}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := p.newID()
	req.Header.Set(RequestIDHeader, requestID)

	p.logger.LogProbeRequest(logging.ProbeRequestLog{
		Timestamp:  time.Now().Format(time.RFC3339Nano),
		RequestID:  requestID,
		Method:     req.Method,
		URL:        target,
		Headers:    flatten(req.Header),
		Body:       string(body),
		BodyLength: len(body),
	})

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Kind: KindNetwork, URL: target,
			Err: fmt.Errorf("read response: %w", err),
		}
	}
	elapsed := time.Since(start)

	out := NewResponse(resp.StatusCode, resp.Header, raw, elapsed)

	preview := raw
	if len(preview) > bodyPreviewLimit {
		preview = preview[:bodyPreviewLimit]
	}
	p.logger.LogProbeResponse(logging.ProbeResponseLog{
		Timestamp:   time.Now().Format(time.RFC3339Nano),
		RequestID:   requestID,
		StatusCode:  out.StatusCode,
		ContentType: out.ContentType,
		Headers:     out.Headers,
		BodyPreview: string(preview),
		BodyLength:  len(raw),
		ElapsedMs:   out.ElapsedMillis(),
	})

	return out, nil
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
