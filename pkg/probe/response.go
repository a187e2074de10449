package probe

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// BodyKind describes what a response body holds after
// normalization.
type BodyKind string

// Body kinds.
const (
	BodyAbsent BodyKind = "absent"
	BodyJSON   BodyKind = "json"
	BodyRaw    BodyKind = "raw"
)

// Response is the normalized form of one HTTP response. It is
// created fresh per probe and never mutated afterwards.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int `json:"status_code"`

	// ContentType is the raw Content-Type header value.
	ContentType string `json:"content_type"`

	// Headers holds the first value of each header, keyed by
	// canonical header name.
	Headers map[string]string `json:"headers"`

	// Kind tells whether Body holds parsed JSON.
	Kind BodyKind `json:"body_kind"`

	// Body is the decoded JSON document when Kind is BodyJSON.
	Body any `json:"body,omitempty"`

	// Raw is the undecoded payload.
	Raw []byte `json:"-"`

	// Elapsed is the wall-clock time from dispatch until the
	// full body was read.
	Elapsed time.Duration `json:"elapsed"`
}

// ElapsedMillis returns Elapsed in fractional milliseconds.
func (r *Response) ElapsedMillis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// Header returns a header value by case-insensitive name.
func (r *Response) Header(name string) (string, bool) {
	v, ok := r.Headers[http.CanonicalHeaderKey(name)]
	return v, ok
}

// NewResponse builds a normalized response. The body is decoded
// as JSON when the content type says so or when the payload
// parses; otherwise the raw bytes are kept.
func NewResponse(
	status int,
	header http.Header,
	raw []byte,
	elapsed time.Duration,
) *Response {
	headers := make(map[string]string, len(header))
	for k, vs := range header {
		if len(vs) > 0 {
			headers[http.CanonicalHeaderKey(k)] = vs[0]
		}
	}

	resp := &Response{
		StatusCode:  status,
		ContentType: header.Get("Content-Type"),
		Headers:     headers,
		Raw:         raw,
		Elapsed:     elapsed,
		Kind:        BodyAbsent,
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return resp
	}

	// Declared JSON that does not parse stays raw.
	resp.Kind = BodyRaw
	if doc, ok := decodeJSON(raw); ok {
		resp.Kind = BodyJSON
		resp.Body = doc
	}

	return resp
}

// IsJSON reports whether the declared content type is JSON.
func (r *Response) IsJSON() bool {
	return isJSONContentType(r.ContentType)
}

func decodeJSON(raw []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return normalizeNumbers(doc), true
}

// normalizeNumbers converts json.Number leaves to int64 when they
// are integral and to float64 otherwise.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	}
	return v
}

func isJSONContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "application/json") ||
		strings.Contains(ct, "+json")
}
