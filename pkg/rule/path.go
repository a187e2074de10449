package rule

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a parsed path: an object key or an
// array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// ParsePath parses a dotted, indexed path such as "items[2].name"
// or "[0].id". A leading "$" or "$." is accepted and "$" alone
// addresses the document root.
func ParsePath(path string) ([]Segment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty path")
	}

	rest := path
	if strings.HasPrefix(rest, "$") {
		rest = strings.TrimPrefix(rest[1:], ".")
		if rest == "" {
			return nil, nil
		}
	}

	var segs []Segment
	for i, part := range strings.Split(rest, ".") {
		if part == "" {
			return nil, fmt.Errorf("malformed path %q: empty segment", path)
		}

		key := part
		var indexes string
		if open := strings.IndexByte(part, '['); open >= 0 {
			key, indexes = part[:open], part[open:]
		}
		if strings.ContainsAny(key, "[]") {
			return nil, fmt.Errorf("malformed path %q: stray bracket", path)
		}
		if key == "" && (indexes == "" || i > 0) {
			return nil, fmt.Errorf("malformed path %q: empty key", path)
		}
		if key != "" {
			segs = append(segs, Segment{Key: key})
		}

		for indexes != "" {
			end := strings.IndexByte(indexes, ']')
			if indexes[0] != '[' || end < 0 {
				return nil, fmt.Errorf("malformed path %q: unclosed index", path)
			}
			n, err := strconv.Atoi(indexes[1:end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf(
					"malformed path %q: invalid index %q",
					path, indexes[1:end],
				)
			}
			segs = append(segs, Segment{Index: n, IsIndex: true})
			indexes = indexes[end+1:]
		}
	}
	return segs, nil
}

// Resolve walks doc along segs. The boolean is false when any
// step is missing, out of range or of the wrong container kind.
// A present JSON null resolves to (nil, true).
func Resolve(doc any, segs []Segment) (any, bool) {
	cur := doc
	for _, s := range segs {
		if s.IsIndex {
			arr, ok := cur.([]any)
			if !ok || s.Index >= len(arr) {
				return nil, false
			}
			cur = arr[s.Index]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := obj[s.Key]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Lookup parses path and resolves it against doc.
func Lookup(doc any, path string) (any, bool, error) {
	segs, err := ParsePath(path)
	if err != nil {
		return nil, false, err
	}
	v, ok := Resolve(doc, segs)
	return v, ok, nil
}

func joinPaths(paths []string) string {
	return strings.Join(paths, ",")
}
