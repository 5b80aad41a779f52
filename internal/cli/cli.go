package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/specialistvlad/timeliness/internal/app"
	"github.com/specialistvlad/timeliness/internal/hcl_adapter"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPaths []string
	logLevel    string
	logFormat   string
	noColor     bool
}

// runtime is the state shared between the root command and a subcommand.
type runtime struct {
	outW io.Writer
	errW io.Writer
	opts globalOptions
	app  *app.App
}

// Run executes the command line in args. Command output goes to outW, logs
// to errW. Usage errors are returned as *ExitError with code 2.
func Run(ctx context.Context, args []string, outW, errW io.Writer) error {
	rt := &runtime{outW: outW, errW: errW}
	cmd := newRootCommand(rt)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if stopErr := rt.stop(); err == nil {
		err = stopErr
	}
	return err
}

// newRootCommand builds the command tree around rt.
func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "timeliness",
		Short: "Lineage timeliness engine",
		Long: `timeliness ranks, collapses and annotates lineage graphs and predicts when
data jobs land.

Examples:
  # Rank the downstream lineage of an entity, hiding datasets
  timeliness index --records lineage.json --root <urn>

  # Predict a landing time for the run scheduled at 06:00 today
  timeliness predict --records lineage.json --root <urn> --schedule "0 6 * * *"

  # Serve the HTTP API from a sqlite store
  timeliness serve --config engine.hcl`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.start(cmd.Context())
		},
	}
	root.SetOut(rt.outW)
	root.SetErr(rt.outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err)
	})

	flags := root.PersistentFlags()
	flags.StringSliceVarP(&rt.opts.configPaths, "config", "c", nil, "Path to an .hcl engine configuration file or directory. Repeatable.")
	flags.StringVar(&rt.opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&rt.opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.BoolVar(&rt.opts.noColor, "no-color", false, "Disable colored output.")

	root.AddCommand(
		newIndexCommand(rt),
		newPredictCommand(rt),
		newImportCommand(rt),
		newReportCommand(rt),
		newServeCommand(rt),
	)
	return root
}

// start validates the global flags and builds the app.
func (rt *runtime) start(ctx context.Context) error {
	if rt.opts.noColor {
		color.NoColor = true
	}

	cfg, err := app.NewConfig(app.Config{
		ConfigPaths: rt.opts.configPaths,
		LogFormat:   rt.opts.logFormat,
		LogLevel:    rt.opts.logLevel,
	})
	if err != nil {
		return usageError("%s", err)
	}

	a, err := app.NewApp(ctx, rt.errW, cfg, hcl_adapter.NewLoader())
	if err != nil {
		return err
	}
	rt.app = a
	return nil
}

func (rt *runtime) stop() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}
