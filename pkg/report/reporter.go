package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reporter renders reports to a writer.
type Reporter interface {
	// WriteReport writes all reports as one document.
	WriteReport(w io.Writer, reports []*Report) error

	// Extension is the file extension for the format,
	// including the dot.
	Extension() string
}

// Format names a report format.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{
		FormatText, FormatJSON, FormatMarkdown, FormatHTML, FormatXLSX,
	}
}

// ReporterOption configures NewReporter.
type ReporterOption func(*reporterConfig)

type reporterConfig struct {
	color  bool
	pretty bool
}

// WithColor enables ANSI colors in text output.
func WithColor(enabled bool) ReporterOption {
	return func(c *reporterConfig) {
		c.color = enabled
	}
}

// WithPretty indents JSON output.
func WithPretty(enabled bool) ReporterOption {
	return func(c *reporterConfig) {
		c.pretty = enabled
	}
}

// NewReporter returns the reporter for format. "md" is accepted
// as an alias for markdown.
func NewReporter(format string, opts ...ReporterOption) (Reporter, error) {
	cfg := reporterConfig{pretty: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch Format(strings.ToLower(format)) {
	case FormatText, "":
		return NewTextReporter(cfg.color), nil
	case FormatJSON:
		return NewJSONReporter(cfg.pretty), nil
	case FormatMarkdown, "md":
		return NewMarkdownReporter(), nil
	case FormatHTML:
		return NewHTMLReporter(), nil
	case FormatXLSX:
		return NewXLSXReporter(), nil
	}
	return nil, fmt.Errorf("unknown report format: %q", format)
}

// SaveAll writes reports in every given format into outputDir as
// report<ext> files and returns the paths written.
func SaveAll(outputDir string, reports []*Report, formats ...Format) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		rep, err := NewReporter(string(f))
		if err != nil {
			return paths, err
		}
		path := filepath.Join(outputDir, "report"+rep.Extension())
		if err := writeFile(path, rep, reports); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, rep Reporter, reports []*Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := rep.WriteReport(f, reports); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
