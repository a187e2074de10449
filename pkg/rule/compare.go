package rule

import (
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"
)

// ValuesEqual compares a JSON-decoded actual value with an
// expected value from a rule. Numbers compare by value whatever
// their Go representation, strings compare in Unicode NFC form,
// and objects and arrays compare element-wise.
func ValuesEqual(actual, expected any) bool {
	if an, ok := toNumber(actual); ok {
		en, ok := toNumber(expected)
		return ok && an.equal(en)
	}

	switch a := actual.(type) {
	case nil:
		return expected == nil
	case string:
		e, ok := expected.(string)
		return ok && norm.NFC.String(a) == norm.NFC.String(e)
	case bool:
		e, ok := expected.(bool)
		return ok && a == e
	case map[string]any:
		e, ok := toObject(expected)
		if !ok || len(a) != len(e) {
			return false
		}
		for k, av := range a {
			ev, ok := e[k]
			if !ok || !ValuesEqual(av, ev) {
				return false
			}
		}
		return true
	case []any:
		e, ok := expected.([]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for i := range a {
			if !ValuesEqual(a[i], e[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// toObject accepts the map shapes produced by JSON and YAML
// decoders.
func toObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// number keeps integers exact and falls back to float64.
type number struct {
	i     int64
	f     float64
	isInt bool
}

func (n number) equal(o number) bool {
	if n.isInt && o.isInt {
		return n.i == o.i
	}
	return n.float() == o.float()
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{i: int64(n), isInt: true}, true
	case int8:
		return number{i: int64(n), isInt: true}, true
	case int16:
		return number{i: int64(n), isInt: true}, true
	case int32:
		return number{i: int64(n), isInt: true}, true
	case int64:
		return number{i: n, isInt: true}, true
	case uint:
		return fromUint(uint64(n)), true
	case uint8:
		return fromUint(uint64(n)), true
	case uint16:
		return fromUint(uint64(n)), true
	case uint32:
		return fromUint(uint64(n)), true
	case uint64:
		return fromUint(n), true
	case float32:
		return fromFloat(float64(n)), true
	case float64:
		return fromFloat(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return number{i: i, isInt: true}, true
		}
		f, err := n.Float64()
		if err != nil {
			return number{}, false
		}
		return fromFloat(f), true
	}
	return number{}, false
}

func fromUint(u uint64) number {
	if u > math.MaxInt64 {
		return number{f: float64(u)}
	}
	return number{i: int64(u), isInt: true}
}

// fromFloat treats integral floats in int64 range as integers so
// 5.0 and 5 compare equal without losing precision on large ints.
func fromFloat(f float64) number {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return number{i: int64(f), isInt: true}
	}
	return number{f: f}
}

// KindOf returns the JSON kind of a decoded value.
func KindOf(v any) Kind {
	if _, ok := toNumber(v); ok {
		return KindNumber
	}
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBool
	case map[string]any, map[any]any:
		return KindObject
	case []any:
		return KindArray
	}
	return Kind(fmt.Sprintf("%T", v))
}

// render formats a value for failure reasons.
func render(v any) string {
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}
