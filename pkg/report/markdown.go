package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"digital.vasic.contracts/pkg/contract"
)

// MarkdownReporter renders an overview table followed by one
// case table per suite.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a Markdown reporter.
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

// Extension returns ".md".
func (r *MarkdownReporter) Extension() string { return ".md" }

// WriteReport writes the Markdown document.
func (r *MarkdownReporter) WriteReport(w io.Writer, reports []*Report) error {
	var sb strings.Builder

	sb.WriteString("# Contract Report\n\n")
	if id := runID(reports); id != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", id))
	}

	sb.WriteString(
		"| Suite | Total | Passed | Failed | Errored | Duration |\n",
	)
	sb.WriteString(
		"|-------|-------|--------|--------|---------|----------|\n",
	)
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf(
			"| %s | %d | %d | %d | %d | %s |\n",
			mdCell(rep.Suite), rep.Total, rep.Passed,
			rep.Failed, rep.Errored, formatDuration(rep.Duration),
		))
	}
	t := Summarize(reports)
	sb.WriteString(fmt.Sprintf(
		"| **Total** | %d | %d | %d | %d | %s |\n",
		t.Total, t.Passed, t.Failed, t.Errored,
		formatDuration(t.Duration),
	))

	for _, rep := range reports {
		if rep == nil {
			continue
		}
		writeMarkdownSuite(&sb, rep)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeMarkdownSuite(sb *strings.Builder, rep *Report) {
	sb.WriteString(fmt.Sprintf("\n## %s\n\n", rep.Suite))
	sb.WriteString(
		"| Case | Status | HTTP | Elapsed | Attempts | Details |\n",
	)
	sb.WriteString(
		"|------|--------|------|---------|----------|---------|\n",
	)
	for _, res := range rep.Results {
		code := "-"
		if res.StatusCode > 0 {
			code = strconv.Itoa(res.StatusCode)
		}
		sb.WriteString(fmt.Sprintf(
			"| %s | %s | %s | %s | %d | %s |\n",
			mdCell(res.Case), res.Status, code,
			formatDuration(res.Elapsed), res.Attempts,
			mdCell(details(res)),
		))
	}
	if rep.BudgetExceeded {
		sb.WriteString(fmt.Sprintf(
			"\nBudget exceeded: %s > %s\n",
			formatDuration(rep.Duration), formatDuration(rep.Budget),
		))
	}
}

// details is the failure text of a result, one reason per line.
func details(res contract.CaseResult) string {
	if res.Status == contract.StatusErrored {
		return res.Cause
	}
	return strings.Join(res.RuleFailures, "\n")
}

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
