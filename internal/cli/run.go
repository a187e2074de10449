package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/env"
	"digital.vasic.contracts/pkg/loader"
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/metrics"
	"digital.vasic.contracts/pkg/monitor"
	"digital.vasic.contracts/pkg/report"
	"digital.vasic.contracts/pkg/runner"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	BaseURL     string
	Workers     int
	Timeout     time.Duration
	Deadline    time.Duration
	Retries     int
	Headers     []string
	Suites      []string
	Format      string
	Color       bool
	Out         string
	SaveDir     string
	SaveFormats []string
	MonitorAddr string
	MonitorHold time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <suite-file|dir>...",
		Short: "Probe an API with the cases of the given suites",
		Long: `Run every case of the given suites against the API at --base-url
and report the outcome of each.

Flags override CONTRACT_* variables from the environment and --env-file.

Example:
  contractcheck run --base-url https://jsonplaceholder.typicode.com suites/
  contractcheck run --suite users --format markdown --out report.md suites/`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuites(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.BaseURL, "base-url", "", "base URL of the API under test")
	f.IntVar(&opts.Workers, "workers", contract.DefaultMaxWorkers, "maximum concurrent probes")
	f.DurationVar(&opts.Timeout, "timeout", contract.DefaultPerCaseTimeout, "timeout of each attempt")
	f.DurationVar(&opts.Deadline, "deadline", 0, "deadline of each suite (0 disables)")
	f.IntVar(&opts.Retries, "retries", 0, "extra attempts after a network error")
	f.StringArrayVarP(&opts.Headers, "header", "H", nil, "header sent with every request, as Name=Value (repeatable)")
	f.StringSliceVar(&opts.Suites, "suite", nil, "run only the named suites")
	f.StringVar(&opts.Format, "format", string(report.FormatText), "report format ("+formatList()+")")
	f.BoolVar(&opts.Color, "color", false, "colorize the text report")
	f.StringVarP(&opts.Out, "out", "o", "", "write the report to a file instead of stdout")
	f.StringVar(&opts.SaveDir, "save-dir", "", "also save the report in every --save-format under this directory")
	f.StringSliceVar(&opts.SaveFormats, "save-format", []string{"json", "html"}, "formats written to --save-dir")
	f.StringVar(&opts.MonitorAddr, "monitor-addr", "", "serve the live dashboard on this address")
	f.DurationVar(&opts.MonitorHold, "monitor-hold", 0, "keep the dashboard up this long after the run")

	return cmd
}

func formatList() string {
	names := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, "|")
}

func runSuites(cmd *cobra.Command, opts *RunOptions, paths []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reporter, err := report.NewReporter(opts.Format, report.WithColor(opts.Color))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --format", err)
	}
	saveFormats, err := parseFormats(opts.SaveFormats)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --save-format", err)
	}

	logger, err := opts.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up logging", err)
	}
	defer func() {
		_ = logger.Close()
	}()

	cfg, err := opts.runConfig(cmd)
	if err != nil {
		return err
	}
	logger.Info("effective configuration",
		logging.StringField("base_url", env.RedactURL(cfg.BaseURL)),
		logging.IntField("max_workers", cfg.MaxWorkers),
		logging.DurationField("per_case_timeout", cfg.PerCaseTimeout),
		logging.DurationField("suite_deadline", cfg.SuiteDeadline),
		logging.IntField("retries", cfg.Retries),
		logging.LogField("headers", env.RedactHeaders(cfg.Headers)),
		logging.BoolField("auth", cfg.Auth != nil),
	)

	catalog := loader.New()
	if err := catalog.Load(paths...); err != nil {
		return WrapExitError(ExitCommandError, "failed to load suites", err)
	}
	suites, err := catalog.Select(opts.Suites...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to select suites", err)
	}
	if len(suites) == 0 {
		return NewExitError(ExitCommandError, "no suites found in "+strings.Join(paths, ", "))
	}
	logger.Debug("suites loaded",
		logging.IntField("count", len(suites)),
		logging.LogField("sources", catalog.Sources()),
	)

	collector := monitor.NewEventCollector()
	stopMonitor, err := opts.startMonitor(ctx, collector, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start monitor", err)
	}

	m := metrics.NewInMemoryMetrics()
	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithMetrics(m),
		runner.WithCollector(collector),
	)
	reports, err := r.RunAll(ctx, suites, cfg)
	stopMonitor(reports)
	if err != nil {
		return WrapExitError(ExitCommandError, "harness fault", err)
	}

	for _, rep := range reports {
		logger.Info("suite latency",
			logging.StringField("suite", rep.Suite),
			logging.DurationField("p50", m.Percentile(rep.Suite, 50)),
			logging.DurationField("p95", m.Percentile(rep.Suite, 95)),
			logging.IntField("peak_in_flight", m.PeakInFlight()),
		)
	}

	if err := writeReport(cmd.OutOrStdout(), opts.Out, reporter, reports); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}
	if opts.SaveDir != "" {
		saved, err := report.SaveAll(opts.SaveDir, reports, saveFormats...)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to save reports", err)
		}
		for _, path := range saved {
			logger.Info("report saved", logging.StringField("path", path))
		}
	}

	if code := report.ExitCode(reports...); code != ExitSuccess {
		t := report.Summarize(reports)
		return NewExitError(code, fmt.Sprintf(
			"contract violated: %d failed, %d errored of %d cases",
			t.Failed, t.Errored, t.Total,
		))
	}
	return nil
}

// newLogger builds the console logger and, with --log-dir, a JSON
// logger behind it.
func (o *RunOptions) newLogger(stderr io.Writer) (logging.Logger, error) {
	console := logging.NewConsoleLogger(o.Verbose,
		logging.WithOutput(stderr),
		logging.WithoutColor(),
	)
	if o.LogDir == "" {
		return console, nil
	}
	file, err := logging.SetupLogging(o.LogDir, o.Verbose)
	if err != nil {
		return nil, err
	}
	return logging.NewMultiLogger(console, file), nil
}

// runConfig resolves the run configuration: defaults, then env
// files and process variables, then explicitly set flags.
func (o *RunOptions) runConfig(cmd *cobra.Command) (*contract.RunConfig, error) {
	vars, err := o.loadEnv()
	if err != nil {
		return nil, err
	}
	cfg := contract.NewRunConfig("")
	if err := env.ApplyRunConfig(vars, cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid environment", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = o.BaseURL
	}
	if flags.Changed("workers") {
		cfg.MaxWorkers = o.Workers
	}
	if flags.Changed("timeout") {
		cfg.PerCaseTimeout = o.Timeout
	}
	if flags.Changed("deadline") {
		cfg.SuiteDeadline = o.Deadline
	}
	if flags.Changed("retries") {
		cfg.Retries = o.Retries
	}
	for _, h := range o.Headers {
		headers, err := env.ParseHeaders(h)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --header", err)
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	return cfg, nil
}

// startMonitor serves the dashboard when --monitor-addr is set.
// The returned func marks the run complete and shuts the server
// down once --monitor-hold has elapsed.
func (o *RunOptions) startMonitor(
	ctx context.Context,
	collector *monitor.EventCollector,
	logger logging.Logger,
) (func([]*report.Report), error) {
	if o.MonitorAddr == "" {
		return func([]*report.Report) {}, nil
	}

	dashboard := monitor.NewDashboardData("")
	server := monitor.NewServer(o.MonitorAddr, collector, dashboard)
	errCh, err := server.Start(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("monitor listening",
		logging.StringField("url", "http://"+server.Addr()+"/dashboard"),
	)

	return func(reports []*report.Report) {
		status := "failed"
		if reports != nil {
			status = "completed"
			if report.ExitCode(reports...) != ExitSuccess {
				status = "violated"
			}
		}
		dashboard.MarkComplete(status)

		if o.MonitorHold > 0 {
			select {
			case <-time.After(o.MonitorHold):
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					logger.Warn("monitor stopped", logging.ErrorField(err))
				}
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Warn("monitor shutdown", logging.ErrorField(err))
		}
	}, nil
}

// parseFormats checks every name against the known report formats.
func parseFormats(names []string) ([]report.Format, error) {
	formats := make([]report.Format, 0, len(names))
	for _, name := range names {
		if _, err := report.NewReporter(name); err != nil {
			return nil, err
		}
		formats = append(formats, report.Format(name))
	}
	return formats, nil
}

func writeReport(stdout io.Writer, path string, r report.Reporter, reports []*report.Report) error {
	if path == "" {
		return r.WriteReport(stdout, reports)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteReport(f, reports); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
