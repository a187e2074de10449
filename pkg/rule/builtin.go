package rule

import (
	"fmt"
	"strings"

	"digital.vasic.contracts/pkg/probe"
)

func evaluateStatusEquals(def Definition, resp *probe.Response) (bool, string) {
	if resp.StatusCode == def.Status {
		return true, ""
	}
	return false, fmt.Sprintf("expected status %d, got %d", def.Status, resp.StatusCode)
}

func evaluateStatusIn(def Definition, resp *probe.Response) (bool, string) {
	for _, s := range def.Statuses {
		if resp.StatusCode == s {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected status in %v, got %d", def.Statuses, resp.StatusCode)
}

func evaluateContentTypeContains(def Definition, resp *probe.Response) (bool, string) {
	if strings.Contains(strings.ToLower(resp.ContentType), strings.ToLower(def.Substring)) {
		return true, ""
	}
	return false, fmt.Sprintf(
		"content type %q does not contain %q", resp.ContentType, def.Substring,
	)
}

// document returns the parsed body, or a reason when the body is
// not JSON.
func document(resp *probe.Response) (any, string) {
	switch resp.Kind {
	case probe.BodyJSON:
		return resp.Body, ""
	case probe.BodyAbsent:
		return nil, "body is absent"
	}
	return nil, "body is not JSON"
}

func evaluateJSONIsObject(_ Definition, resp *probe.Response) (bool, string) {
	doc, reason := document(resp)
	if reason != "" {
		return false, reason
	}
	if _, ok := doc.(map[string]any); !ok {
		return false, fmt.Sprintf("body is not a JSON object (got %s)", KindOf(doc))
	}
	return true, ""
}

func evaluateJSONIsArray(def Definition, resp *probe.Response) (bool, string) {
	doc, reason := document(resp)
	if reason != "" {
		return false, reason
	}
	arr, ok := doc.([]any)
	if !ok {
		return false, fmt.Sprintf("body is not a JSON array (got %s)", KindOf(doc))
	}
	if len(arr) < def.Min {
		return false, fmt.Sprintf(
			"array length %d is less than %d", len(arr), def.Min,
		)
	}
	return true, ""
}

// lookup resolves path in the response body. Any failure,
// including a non-JSON body, reads as a missing path.
func lookup(resp *probe.Response, path string) (any, bool) {
	if resp.Kind != probe.BodyJSON {
		return nil, false
	}
	v, ok, err := Lookup(resp.Body, path)
	return v, ok && err == nil
}

func notFound(path string) string {
	return "path not found: " + path
}

func evaluateFieldsPresent(def Definition, resp *probe.Response) (bool, string) {
	var missing []string
	for _, p := range def.Paths {
		if _, ok := lookup(resp, p); !ok {
			missing = append(missing, notFound(p))
		}
	}
	if len(missing) > 0 {
		return false, strings.Join(missing, "; ")
	}
	return true, ""
}

func evaluateFieldEquals(def Definition, resp *probe.Response) (bool, string) {
	v, ok := lookup(resp, def.Path)
	if !ok {
		return false, notFound(def.Path)
	}
	if ValuesEqual(v, def.Value) {
		return true, ""
	}
	return false, fmt.Sprintf(
		"%s: expected %s, got %s", def.Path, render(def.Value), render(v),
	)
}

func (e *DefaultEngine) evaluateFieldMatchesPattern(
	def Definition, resp *probe.Response,
) (bool, string) {
	v, ok := lookup(resp, def.Path)
	if !ok {
		return false, notFound(def.Path)
	}
	s, ok := v.(string)
	if !ok {
		return false, fmt.Sprintf("%s: expected a string, got %s", def.Path, KindOf(v))
	}
	re, err := e.patterns.get(def.Pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern %q: %v", def.Pattern, err)
	}
	if !re.MatchString(s) {
		return false, fmt.Sprintf("%s: %q does not match %q", def.Path, s, def.Pattern)
	}
	return true, ""
}

func evaluateFieldOfType(def Definition, resp *probe.Response) (bool, string) {
	v, ok := lookup(resp, def.Path)
	if !ok {
		return false, notFound(def.Path)
	}
	if got := KindOf(v); got != def.Kind {
		return false, fmt.Sprintf("%s: expected %s, got %s", def.Path, def.Kind, got)
	}
	return true, ""
}

func evaluateResponseTimeUnder(def Definition, resp *probe.Response) (bool, string) {
	ms := resp.ElapsedMillis()
	if ms < def.Millis {
		return true, ""
	}
	return false, fmt.Sprintf(
		"response time %.1fms is not under %gms", ms, def.Millis,
	)
}

func evaluateHeaderPresent(def Definition, resp *probe.Response) (bool, string) {
	if _, ok := resp.Header(def.Header); ok {
		return true, ""
	}
	return false, "header not found: " + def.Header
}

func evaluateArrayLengthAtLeast(def Definition, resp *probe.Response) (bool, string) {
	v, ok := lookup(resp, def.Path)
	if !ok {
		return false, notFound(def.Path)
	}
	arr, ok := v.([]any)
	if !ok {
		return false, fmt.Sprintf("%s: expected array, got %s", def.Path, KindOf(v))
	}
	if len(arr) < def.Min {
		return false, fmt.Sprintf(
			"%s: array length %d is less than %d", def.Path, len(arr), def.Min,
		)
	}
	return true, ""
}
