// Package probe sends single HTTP requests against the service
// under test and normalizes what comes back. A probe is one
// attempt: retry policy belongs to the runner.
package probe

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Method is an HTTP verb accepted in an endpoint reference.
type Method string

// Supported methods.
const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch:
		return true
	}
	return false
}

// placeholderRe matches {name} path template placeholders.
var placeholderRe = regexp.MustCompile(`\{([^{}/]+)\}`)

// Endpoint references one request against the remote API. It is
// treated as immutable once a test case owns it.
type Endpoint struct {
	// Method is the HTTP verb.
	Method Method `json:"method" yaml:"method"`

	// Path is the path template, e.g. "/users/{id}".
	Path string `json:"path" yaml:"path"`

	// PathParams fills {name} placeholders in Path.
	PathParams map[string]string `json:"path_params,omitempty" yaml:"path_params,omitempty"`

	// QueryParams are appended as the query string.
	QueryParams map[string]string `json:"query,omitempty" yaml:"query,omitempty"`

	// Headers are sent with the request in addition to the
	// run-level headers.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body is serialized as JSON when present.
	Body any `json:"body,omitempty" yaml:"body,omitempty"`
}

// Placeholders returns the placeholder names used in the path
// template, in order of appearance.
func (e Endpoint) Placeholders() []string {
	matches := placeholderRe.FindAllStringSubmatch(e.Path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// ResolvePath substitutes path parameters into the template.
// Values are path-escaped. An unfilled placeholder is an error.
func (e Endpoint) ResolvePath() (string, error) {
	var missing []string
	resolved := placeholderRe.ReplaceAllStringFunc(
		e.Path,
		func(m string) string {
			name := m[1 : len(m)-1]
			v, ok := e.PathParams[name]
			if !ok {
				missing = append(missing, name)
				return m
			}
			return url.PathEscape(v)
		},
	)
	if len(missing) > 0 {
		return "", fmt.Errorf(
			"unresolved path parameters: %s",
			strings.Join(missing, ", "),
		)
	}
	return resolved, nil
}

// BuildURL joins baseURL with the resolved path and appends the
// query parameters in sorted key order.
func (e Endpoint) BuildURL(baseURL string) (string, error) {
	path, err := e.ResolvePath()
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(baseURL, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	full := base + path

	if _, err := url.Parse(full); err != nil {
		return "", fmt.Errorf("invalid url %q: %w", full, err)
	}

	if len(e.QueryParams) == 0 {
		return full, nil
	}

	keys := make([]string, 0, len(e.QueryParams))
	for k := range e.QueryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		q.Set(k, e.QueryParams[k])
	}

	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + q.Encode(), nil
}

// String renders the endpoint as "METHOD path".
func (e Endpoint) String() string {
	return string(e.Method) + " " + e.Path
}
