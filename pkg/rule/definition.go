// Package rule evaluates response contract rules. Rules are plain
// data: a Definition names its type and carries the parameters
// that type needs, and an Engine maps each type to a pure
// evaluator over a normalized probe response.
package rule

// Type names a rule evaluator.
type Type string

// Built-in rule types.
const (
	TypeStatusEquals        Type = "status_equals"
	TypeStatusIn            Type = "status_in"
	TypeContentTypeContains Type = "content_type_contains"
	TypeJSONIsObject        Type = "json_is_object"
	TypeJSONIsArray         Type = "json_is_array"
	TypeFieldsPresent       Type = "fields_present"
	TypeFieldEquals         Type = "field_equals"
	TypeFieldMatchesPattern Type = "field_matches_pattern"
	TypeFieldOfType         Type = "field_of_type"
	TypeResponseTimeUnder   Type = "response_time_under"
	TypeHeaderPresent       Type = "header_present"
	TypeArrayLengthAtLeast  Type = "array_length_at_least"
)

// Kind is a JSON value kind checked by field_of_type.
type Kind string

// JSON kinds.
const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindObject Kind = "object"
	KindArray  Kind = "array"
	KindNull   Kind = "null"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBool, KindObject, KindArray, KindNull:
		return true
	}
	return false
}

// EmailPattern is the email format used by contracts that check
// address fields.
const EmailPattern = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`

// Definition describes a single rule. Only the fields relevant to
// Type are read.
type Definition struct {
	Type Type `json:"type" yaml:"type"`

	// Status is the expected code for status_equals.
	Status int `json:"status,omitempty" yaml:"status,omitempty"`

	// Statuses lists accepted codes for status_in.
	Statuses []int `json:"statuses,omitempty" yaml:"statuses,omitempty"`

	// Substring is searched for by content_type_contains.
	Substring string `json:"substring,omitempty" yaml:"substring,omitempty"`

	// Path addresses a value in the JSON body, e.g.
	// "address.geo.lat" or "[0].id".
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Paths lists the fields required by fields_present.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Value is the expected value for field_equals.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Pattern is a regular expression that must match the whole
	// field value.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Kind is the expected JSON kind for field_of_type.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Min is the minimum length for json_is_array and
	// array_length_at_least.
	Min int `json:"min,omitempty" yaml:"min,omitempty"`

	// Millis is the exclusive upper bound for
	// response_time_under.
	Millis float64 `json:"millis,omitempty" yaml:"millis,omitempty"`

	// Header is the header name for header_present.
	Header string `json:"header,omitempty" yaml:"header,omitempty"`

	// Message replaces the generated failure reason when set.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Target returns what the rule inspects, for reporting.
func (d Definition) Target() string {
	switch d.Type {
	case TypeStatusEquals, TypeStatusIn:
		return "status"
	case TypeContentTypeContains:
		return "content-type"
	case TypeHeaderPresent:
		return d.Header
	case TypeResponseTimeUnder:
		return "elapsed"
	case TypeFieldsPresent:
		return joinPaths(d.Paths)
	case TypeJSONIsObject, TypeJSONIsArray:
		return "$"
	}
	if d.Path == "" {
		return "$"
	}
	return d.Path
}

// StatusEquals requires the exact status code.
func StatusEquals(code int) Definition {
	return Definition{Type: TypeStatusEquals, Status: code}
}

// StatusIn requires the status code to be one of codes.
func StatusIn(codes ...int) Definition {
	return Definition{Type: TypeStatusIn, Statuses: codes}
}

// ContentTypeContains requires the Content-Type header to contain
// substr.
func ContentTypeContains(substr string) Definition {
	return Definition{Type: TypeContentTypeContains, Substring: substr}
}

// JSONIsObject requires the body to be a JSON object.
func JSONIsObject() Definition {
	return Definition{Type: TypeJSONIsObject}
}

// JSONIsArray requires the body to be a JSON array of at least
// minLength elements.
func JSONIsArray(minLength int) Definition {
	return Definition{Type: TypeJSONIsArray, Min: minLength}
}

// FieldsPresent requires every path to resolve.
func FieldsPresent(paths ...string) Definition {
	return Definition{Type: TypeFieldsPresent, Paths: paths}
}

// FieldEquals requires the value at path to equal value.
func FieldEquals(path string, value any) Definition {
	return Definition{Type: TypeFieldEquals, Path: path, Value: value}
}

// FieldMatchesPattern requires the string at path to fully match
// pattern.
func FieldMatchesPattern(path, pattern string) Definition {
	return Definition{Type: TypeFieldMatchesPattern, Path: path, Pattern: pattern}
}

// FieldOfType requires the value at path to be of kind.
func FieldOfType(path string, kind Kind) Definition {
	return Definition{Type: TypeFieldOfType, Path: path, Kind: kind}
}

// ResponseTimeUnder requires the probe to complete in strictly
// less than millis milliseconds.
func ResponseTimeUnder(millis float64) Definition {
	return Definition{Type: TypeResponseTimeUnder, Millis: millis}
}

// HeaderPresent requires the named response header.
func HeaderPresent(name string) Definition {
	return Definition{Type: TypeHeaderPresent, Header: name}
}

// ArrayLengthAtLeast requires the array at path to hold at least
// min elements. Use "$" for the body itself.
func ArrayLengthAtLeast(path string, min int) Definition {
	return Definition{Type: TypeArrayLengthAtLeast, Path: path, Min: min}
}

// Outcome is the result of evaluating one rule.
type Outcome struct {
	Type   Type   `json:"type"`
	Target string `json:"target"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// Failures returns the reasons of all failed outcomes in order.
func Failures(outcomes []Outcome) []string {
	var out []string
	for _, o := range outcomes {
		if !o.Passed {
			out = append(out, o.Reason)
		}
	}
	return out
}
