package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"digital.vasic.contracts/pkg/contract"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

// TextReporter renders a console summary, one line per case.
type TextReporter struct {
	color bool
}

// NewTextReporter creates a text reporter.
func NewTextReporter(color bool) *TextReporter {
	return &TextReporter{color: color}
}

// Extension returns ".txt".
func (r *TextReporter) Extension() string { return ".txt" }

// WriteReport writes every suite followed by a total line.
func (r *TextReporter) WriteReport(w io.Writer, reports []*Report) error {
	bw := bufio.NewWriter(w)
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		r.writeSuite(bw, rep)
		fmt.Fprintln(bw)
	}

	t := Summarize(reports)
	fmt.Fprintf(bw,
		"Total: %d cases across %d suites: %d passed, %d failed, %d errored\n",
		t.Total, t.Suites, t.Passed, t.Failed, t.Errored,
	)
	return bw.Flush()
}

func (r *TextReporter) writeSuite(w io.Writer, rep *Report) {
	fmt.Fprintf(w, "Suite: %s\n", rep.Suite)
	for _, res := range rep.Results {
		line := fmt.Sprintf("  %s %s (%s)",
			r.label(res.Status), res.Case, caseDetail(res),
		)
		if res.Status == contract.StatusErrored && res.Cause != "" {
			line += ": " + res.Cause
		}
		fmt.Fprintln(w, line)
		for _, f := range res.RuleFailures {
			fmt.Fprintf(w, "    - %s\n", f)
		}
	}
	fmt.Fprintf(w, "  %d cases: %d passed, %d failed, %d errored in %s\n",
		rep.Total, rep.Passed, rep.Failed, rep.Errored,
		formatDuration(rep.Duration),
	)
	if rep.BudgetExceeded {
		fmt.Fprintf(w, "  budget exceeded: %s > %s\n",
			formatDuration(rep.Duration), formatDuration(rep.Budget),
		)
	}
}

func (r *TextReporter) label(s contract.Status) string {
	var text, color string
	switch s {
	case contract.StatusPassed:
		text, color = "PASS", ansiGreen
	case contract.StatusFailed:
		text, color = "FAIL", ansiRed
	default:
		text, color = "ERROR", ansiYellow
	}
	text = fmt.Sprintf("%-6s", text)
	if !r.color {
		return text
	}
	return color + text + ansiReset
}

// caseDetail renders "status, elapsed[, n attempts]".
func caseDetail(res contract.CaseResult) string {
	parts := make([]string, 0, 3)
	if res.StatusCode > 0 {
		parts = append(parts, strconv.Itoa(res.StatusCode))
	}
	parts = append(parts, formatDuration(res.Elapsed))
	if res.Attempts > 1 {
		parts = append(parts, fmt.Sprintf("%d attempts", res.Attempts))
	}
	return strings.Join(parts, ", ")
}
