package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"digital.vasic.contracts/pkg/contract"
)

// Sheet names of the XLSX workbook.
const (
	SummarySheet = "Summary"
	ResultsSheet = "Results"
)

var (
	summaryHeaders = []any{
		"Suite", "Run ID", "Total", "Passed", "Failed", "Errored",
		"Duration (ms)", "Budget Exceeded",
	}
	resultHeaders = []any{
		"Suite", "Case", "Status", "HTTP", "Elapsed (ms)",
		"Attempts", "Details",
	}
)

const (
	failedBgColor  = "FFC7CE"
	erroredBgColor = "FFEB9C"
	headerBgColor  = "DDEBF7"
)

// XLSXReporter renders a workbook with a per-suite summary sheet
// and a sheet holding every case result.
type XLSXReporter struct{}

// NewXLSXReporter creates an XLSX reporter.
func NewXLSXReporter() *XLSXReporter {
	return &XLSXReporter{}
}

// Extension returns ".xlsx".
func (r *XLSXReporter) Extension() string { return ".xlsx" }

// WriteReport writes the workbook to w.
func (r *XLSXReporter) WriteReport(w io.Writer, reports []*Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ResultsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}
	if err := writeSummarySheet(f, styles, reports); err != nil {
		return err
	}
	if err := writeResultsSheet(f, styles, reports); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type sheetStyles struct {
	header  int
	failed  int
	errored int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type: "pattern", Pattern: 1, Color: []string{headerBgColor},
		},
	})
	if err != nil {
		return s, fmt.Errorf("create style: %w", err)
	}
	s.failed, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type: "pattern", Pattern: 1, Color: []string{failedBgColor},
		},
	})
	if err != nil {
		return s, fmt.Errorf("create style: %w", err)
	}
	s.errored, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type: "pattern", Pattern: 1, Color: []string{erroredBgColor},
		},
	})
	if err != nil {
		return s, fmt.Errorf("create style: %w", err)
	}
	return s, nil
}

func writeSummarySheet(f *excelize.File, styles sheetStyles, reports []*Report) error {
	if err := writeHeaderRow(f, SummarySheet, summaryHeaders, styles.header); err != nil {
		return err
	}

	row := 2
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		values := []any{
			rep.Suite, rep.RunID, rep.Total, rep.Passed, rep.Failed,
			rep.Errored, millis(rep.Duration), rep.BudgetExceeded,
		}
		style := 0
		if !rep.OK() {
			style = styles.failed
		}
		if err := writeRow(f, SummarySheet, row, values, style); err != nil {
			return err
		}
		row++
	}

	t := Summarize(reports)
	total := []any{
		"Total", "", t.Total, t.Passed, t.Failed, t.Errored,
		millis(t.Duration), "",
	}
	return writeRow(f, SummarySheet, row, total, styles.header)
}

func writeResultsSheet(f *excelize.File, styles sheetStyles, reports []*Report) error {
	if err := writeHeaderRow(f, ResultsSheet, resultHeaders, styles.header); err != nil {
		return err
	}
	if err := f.SetColWidth(ResultsSheet, "G", "G", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	row := 2
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		for _, res := range rep.Results {
			values := []any{
				rep.Suite, res.Case, string(res.Status), res.StatusCode,
				millis(res.Elapsed), res.Attempts, details(res),
			}
			style := 0
			switch res.Status {
			case contract.StatusFailed:
				style = styles.failed
			case contract.StatusErrored:
				style = styles.errored
			}
			if err := writeRow(f, ResultsSheet, row, values, style); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []any, style int) error {
	if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return writeRow(f, sheet, 1, headers, style)
}

// writeRow fills row starting at column A and applies style when
// it is non-zero.
func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", row, sheet, err)
	}
	if style == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}
