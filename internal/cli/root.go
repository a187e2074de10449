package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/env"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	LogDir   string
	EnvFiles []string
}

// NewRootCommand creates the root command for contractcheck.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "contractcheck",
		Short: "Verify HTTP APIs against declarative contract suites",
		Long: `contractcheck probes a remote HTTP API with the cases of one or
more suite files and checks every response against the suite's rules.

Exit status is 0 when every case passed, 1 when a case failed or
errored, and 2 when the suites or configuration could not be used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.LogDir, "log-dir", "", "write JSON run and probe logs to this directory")
	cmd.PersistentFlags().StringArrayVar(&opts.EnvFiles, "env-file", nil, "load CONTRACT_* variables from a .env file (repeatable)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// Execute runs the root command with args and returns the process
// exit code. Errors are printed to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// loadEnv reads every env file in order.
func (o *RootOptions) loadEnv() (*env.DefaultLoader, error) {
	l := env.NewLoader()
	for _, path := range o.EnvFiles {
		if err := l.Load(path); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load env file", err)
		}
	}
	return l, nil
}
