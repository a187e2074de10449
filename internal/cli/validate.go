package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/loader"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Format string
}

// FileResult lists the problems found in one suite file.
type FileResult struct {
	Path   string   `json:"path"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult is the outcome of validate.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Suites int          `json:"suites"`
	Files  []FileResult `json:"files"`
	Errors []string     `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <suite-file|dir>...",
		Short: "Check suite files without sending any request",
		Long: `Decode every suite file and check its suites: names, rules,
paths, patterns and methods. Suite names must be unique across all
given files. No request is sent.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, paths []string) error {
	if opts.Format != "text" && opts.Format != "json" {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be text or json", opts.Format))
	}

	files, err := suiteFiles(paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list suite files", err)
	}

	result := ValidationResult{Valid: true, Files: make([]FileResult, 0, len(files))}
	for _, path := range files {
		fr := FileResult{Path: path}
		for _, verr := range loader.ValidateFile(path, nil) {
			fr.Errors = append(fr.Errors, verr.Error())
		}
		if len(fr.Errors) > 0 {
			result.Valid = false
		}
		result.Files = append(result.Files, fr)
	}
	if len(files) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "no suite files found")
	}

	// Duplicates across files only show up once everything is
	// loaded together.
	if result.Valid {
		catalog := loader.New()
		if err := catalog.Load(files...); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Suites = catalog.Count()
		}
	}

	if err := writeValidation(cmd.OutOrStdout(), opts.Format, result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if !result.Valid {
		return NewExitError(ExitCommandError, "validation failed")
	}
	return nil
}

// suiteFiles expands directories into their suite files, sorted
// by name and without recursion.
func suiteFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && loader.IsSuiteFile(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(p, name))
		}
	}
	return files, nil
}

func writeValidation(w io.Writer, format string, result ValidationResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	for _, fr := range result.Files {
		if len(fr.Errors) == 0 {
			fmt.Fprintf(w, "✓ %s\n", fr.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", fr.Path)
		for _, e := range fr.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
	if result.Valid {
		fmt.Fprintf(w, "✓ %d suites valid in %d files\n", result.Suites, len(result.Files))
	}
	return nil
}
