package contract

import (
	"fmt"
	"strings"

	"digital.vasic.contracts/pkg/rule"
)

// Template generates one case per value. Every "{param}" token in
// the case's path parameters, query, headers, string body values
// and rule values is replaced by the value. A string that is
// exactly "{param}" takes the value with its original type.
type Template struct {
	// Name prefixes generated case names: "<name>[<value>]".
	Name   string   `json:"name" yaml:"name"`
	Param  string   `json:"param" yaml:"param"`
	Values []any    `json:"values" yaml:"values"`
	Case   TestCase `json:"case" yaml:"case"`
}

// CaseName returns the generated name for value.
func (t Template) CaseName(value any) string {
	return fmt.Sprintf("%s[%v]", t.Name, value)
}

// Expand generates the template's cases.
func (t Template) Expand() []TestCase {
	out := make([]TestCase, 0, len(t.Values))
	for _, v := range t.Values {
		out = append(out, t.instantiate(v))
	}
	return out
}

func (t Template) instantiate(value any) TestCase {
	s := substituter{token: "{" + t.Param + "}", value: value}
	tc := t.Case
	tc.Name = t.CaseName(value)

	ep := tc.Endpoint
	ep.PathParams = s.stringMap(ep.PathParams)
	if strings.Contains(ep.Path, s.token) {
		if _, ok := ep.PathParams[t.Param]; !ok {
			if ep.PathParams == nil {
				ep.PathParams = map[string]string{}
			}
			ep.PathParams[t.Param] = fmt.Sprint(value)
		}
	}
	ep.QueryParams = s.stringMap(ep.QueryParams)
	ep.Headers = s.stringMap(ep.Headers)
	ep.Body = s.any(ep.Body)
	tc.Endpoint = ep

	if tc.Rules != nil {
		rules := make([]rule.Definition, len(tc.Rules))
		for i, r := range tc.Rules {
			r.Value = s.any(r.Value)
			r.Path = s.string(r.Path)
			r.Pattern = s.string(r.Pattern)
			if r.Paths != nil {
				paths := make([]string, len(r.Paths))
				for j, p := range r.Paths {
					paths[j] = s.string(p)
				}
				r.Paths = paths
			}
			rules[i] = r
		}
		tc.Rules = rules
	}
	return tc
}

type substituter struct {
	token string
	value any
}

func (s substituter) string(in string) string {
	return strings.ReplaceAll(in, s.token, fmt.Sprint(s.value))
}

func (s substituter) stringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = s.string(v)
	}
	return out
}

// any copies v with tokens replaced, leaving the template intact.
func (s substituter) any(v any) any {
	switch t := v.(type) {
	case string:
		if t == s.token {
			return s.value
		}
		return s.string(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = s.any(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = s.any(item)
		}
		return out
	}
	return v
}
