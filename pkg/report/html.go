package report

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"digital.vasic.contracts/pkg/contract"
)

// HTMLReporter renders a standalone HTML page.
type HTMLReporter struct{}

// NewHTMLReporter creates a new HTML reporter.
func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{}
}

// Extension returns ".html".
func (r *HTMLReporter) Extension() string { return ".html" }

// WriteReport writes an HTML report to the specified writer.
func (r *HTMLReporter) WriteReport(w io.Writer, reports []*Report) error {
	r.writeHeader(w, "Contract Report")

	fmt.Fprintln(w, "<h1>Contract Report</h1>")
	if id := runID(reports); id != "" {
		fmt.Fprintf(
			w,
			"<p><strong>Run ID:</strong> <code>%s</code></p>\n",
			html.EscapeString(id),
		)
	}

	r.writeOverview(w, reports)
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		r.writeSuite(w, rep)
	}

	r.writeFooter(w)
	return nil
}

func (r *HTMLReporter) writeOverview(w io.Writer, reports []*Report) {
	fmt.Fprintln(w, "<h2>Overview</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(
		w,
		"<tr><th>Suite</th><th>Total</th><th>Passed</th>"+
			"<th>Failed</th><th>Errored</th><th>Duration</th>"+
			"<th>Started</th></tr>",
	)

	for _, rep := range reports {
		if rep == nil {
			continue
		}
		cls := "status-passed"
		if !rep.OK() {
			cls = "status-failed"
		}
		fmt.Fprintf(
			w,
			"<tr><td class=\"%s\">%s</td><td>%d</td><td>%d</td>"+
				"<td>%d</td><td>%d</td><td>%s</td><td>%s</td></tr>\n",
			cls, html.EscapeString(rep.Suite),
			rep.Total, rep.Passed, rep.Failed, rep.Errored,
			formatDuration(rep.Duration),
			rep.StartedAt.Format(time.RFC3339),
		)
	}

	t := Summarize(reports)
	fmt.Fprintf(
		w,
		"<tr><th>Total</th><th>%d</th><th>%d</th><th>%d</th>"+
			"<th>%d</th><th>%s</th><th></th></tr>\n",
		t.Total, t.Passed, t.Failed, t.Errored,
		formatDuration(t.Duration),
	)
	fmt.Fprintln(w, "</table>")

	if t.Total > 0 {
		pct := float64(t.Passed) / float64(t.Total) * 100
		fmt.Fprintf(
			w,
			"<p><strong>Pass Rate:</strong> %d/%d (%.0f%%)</p>\n",
			t.Passed, t.Total, pct,
		)
	}
}

func (r *HTMLReporter) writeSuite(w io.Writer, rep *Report) {
	fmt.Fprintf(w, "<h2>%s</h2>\n", html.EscapeString(rep.Suite))
	if rep.BudgetExceeded {
		fmt.Fprintf(
			w,
			"<p class=\"budget-exceeded\">Budget exceeded: "+
				"%s &gt; %s</p>\n",
			formatDuration(rep.Duration), formatDuration(rep.Budget),
		)
	}

	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(
		w,
		"<tr><th>Case</th><th>Status</th><th>HTTP</th>"+
			"<th>Elapsed</th><th>Attempts</th><th>Details</th></tr>",
	)
	for _, res := range rep.Results {
		code := "-"
		if res.StatusCode > 0 {
			code = fmt.Sprint(res.StatusCode)
		}
		fmt.Fprintf(
			w,
			"<tr><td>%s</td><td class=\"%s\">%s</td><td>%s</td>"+
				"<td>%s</td><td>%d</td><td>%s</td></tr>\n",
			html.EscapeString(res.Case),
			statusClass(res.Status),
			strings.ToUpper(string(res.Status)),
			code, formatDuration(res.Elapsed), res.Attempts,
			htmlDetails(res),
		)
	}
	fmt.Fprintln(w, "</table>")
}

func statusClass(s contract.Status) string {
	return "status-" + string(s)
}

func htmlDetails(res contract.CaseResult) string {
	lines := strings.Split(details(res), "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(l)
	}
	return strings.Join(lines, "<br>")
}

func (r *HTMLReporter) writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont,
    "Segoe UI", Roboto, sans-serif;
  max-width: 960px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
  background: #f9f9f9;
}
h1 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
h2 { color: #2c3e50; margin-top: 30px; }
h3 { color: #34495e; }
table {
  border-collapse: collapse;
  width: 100%%;
  margin: 10px 0;
  background: #fff;
}
th, td {
  border: 1px solid #ddd;
  padding: 8px 12px;
  text-align: left;
}
th { background: #3498db; color: #fff; }
tr:nth-child(even) { background: #f2f2f2; }
.status-passed { color: #27ae60; font-weight: bold; }
.status-failed { color: #e74c3c; font-weight: bold; }
.status-errored { color: #e67e22; font-weight: bold; }
.budget-exceeded { color: #e67e22; }
code {
  background: #ecf0f1;
  padding: 2px 6px;
  border-radius: 3px;
  font-size: 0.9em;
}
footer {
  margin-top: 40px;
  padding-top: 10px;
  border-top: 1px solid #ddd;
  color: #7f8c8d;
  font-size: 0.9em;
}
</style>
</head>
<body>
`, html.EscapeString(title))
}

func (r *HTMLReporter) writeFooter(w io.Writer) {
	fmt.Fprintln(w, "<footer>")
	fmt.Fprintln(
		w, "<p>Generated by contractcheck</p>",
	)
	fmt.Fprintln(w, "</footer>")
	fmt.Fprintln(w, "</body>")
	fmt.Fprintln(w, "</html>")
}
