package report

import (
	"encoding/json"
	"io"
)

// JSONReporter renders reports as one JSON document.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

// jsonRun is the JSON structure written by JSONReporter.
type jsonRun struct {
	RunID    string    `json:"run_id,omitempty"`
	ExitCode int       `json:"exit_code"`
	Totals   Totals    `json:"totals"`
	Reports  []*Report `json:"reports"`
}

// Extension returns ".json".
func (r *JSONReporter) Extension() string { return ".json" }

// WriteReport writes the run document followed by a newline.
func (r *JSONReporter) WriteReport(w io.Writer, reports []*Report) error {
	if reports == nil {
		reports = []*Report{}
	}
	doc := jsonRun{
		RunID:    runID(reports),
		ExitCode: ExitCode(reports...),
		Totals:   Summarize(reports),
		Reports:  reports,
	}

	enc := json.NewEncoder(w)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
