package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/timeliness/internal/app"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/recordfile"
	"github.com/specialistvlad/timeliness/internal/timeliness"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// loadRecords reads the record files, or returns nil when none were given.
func loadRecords(ctx context.Context, paths []string) ([]lineage.Record, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	records, err := recordfile.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return records, nil
}

func addRecordsFlag(fs *pflag.FlagSet, p *[]string, usage string) {
	fs.StringSliceVarP(p, "records", "r", nil, usage)
	_ = fs.SetAnnotation("records", cobra.BashCompFilenameExt, []string{"json", "yaml", "yml"})
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError("unexpected argument %q", args[0])
	}
	return nil
}

func parseTimeFlag(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, ok := lineage.ParseTimestamp(raw)
	if !ok {
		return time.Time{}, usageError("invalid --%s %q: expected an RFC 3339 timestamp, a date or epoch milliseconds", name, raw)
	}
	return t, nil
}

func newIndexCommand(rt *runtime) *cobra.Command {
	var (
		records  []string
		root     string
		collapse bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the ranked lineage graph of a root entity",
		Long: `Build the lineage graph of a root entity, rank it breadth-first from the root
and index the SLA properties datasets hand down to jobs. Without --records the
downstream lineage of the root is read from the configured record store.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if root == "" {
				return usageError("--root is required")
			}
			var override *bool
			if cmd.Flags().Changed("collapse") {
				override = &collapse
			}

			ctx := cmd.Context()
			recs, err := loadRecords(ctx, records)
			if err != nil {
				return err
			}

			var idx *lineage.Index
			if recs != nil {
				idx = rt.app.Index(ctx, root, recs, override)
			} else if idx, err = rt.app.StoredIndex(ctx, root, override); err != nil {
				return err
			}

			view := app.NewIndexView(idx)
			if asJSON {
				return printJSON(rt.outW, view)
			}
			printIndex(rt.outW, view)
			return nil
		},
	}
	addRecordsFlag(cmd.Flags(), &records, "Record file or directory (.json, .yaml). Repeatable.")
	cmd.Flags().StringVar(&root, "root", "", "URN of the root entity.")
	cmd.Flags().BoolVar(&collapse, "collapse", true, "Hide collapsible entities. Defaults to the configuration.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the index as JSON.")
	return cmd
}

func newPredictCommand(rt *runtime) *cobra.Command {
	var (
		records  []string
		root     string
		atRaw    string
		schedule string
		nowRaw   string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict when a root job lands",
		Long: `Predict the landing time of a root job for one execution instant. The
instant is either given with --at or derived from a cron schedule as its
latest tick at or before --now (default: the current time).`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if root == "" {
				return usageError("--root is required")
			}
			at, err := parseTimeFlag("at", atRaw)
			if err != nil {
				return err
			}
			now, err := parseTimeFlag("now", nowRaw)
			if err != nil {
				return err
			}
			at, err = rt.app.ExecutionInstant(at, schedule, now)
			if errors.Is(err, app.ErrNoExecutionInstant) {
				return usageError("one of --at or --schedule is required when no schedule is configured")
			}
			if err != nil {
				return usageError("%s", err)
			}

			ctx := cmd.Context()
			recs, err := loadRecords(ctx, records)
			if err != nil {
				return err
			}

			var view app.PredictionView
			if recs != nil {
				rootRec, results := app.SplitRoot(root, recs)
				view = app.NewPredictionView(root, at, rt.app.Predict(ctx, rootRec, results, at))
			} else {
				res, err := rt.app.StoredPredict(ctx, root, at)
				if err != nil {
					return err
				}
				view = app.NewPredictionView(root, at, res)
			}

			if asJSON {
				return printJSON(rt.outW, view)
			}
			printPrediction(rt.outW, view)
			return nil
		},
	}
	addRecordsFlag(cmd.Flags(), &records, "Record file or directory (.json, .yaml). Repeatable.")
	cmd.Flags().StringVar(&root, "root", "", "URN of the root job.")
	cmd.Flags().StringVar(&atRaw, "at", "", "Execution instant (RFC 3339).")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule deriving the execution instant.")
	cmd.Flags().StringVar(&nowRaw, "now", "", "Reference time for --schedule (RFC 3339).")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the prediction as JSON.")
	return cmd
}

func newImportCommand(rt *runtime) *cobra.Command {
	var records []string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load records into the configured record store",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(records) == 0 {
				return usageError("--records is required")
			}
			ctx := cmd.Context()
			recs, err := loadRecords(ctx, records)
			if err != nil {
				return err
			}
			if err := rt.app.Import(ctx, recs); err != nil {
				return err
			}
			okColor.Fprintf(rt.outW, "Imported %d records.\n", len(recs))
			return nil
		},
	}
	addRecordsFlag(cmd.Flags(), &records, "Record file or directory (.json, .yaml). Repeatable.")
	return cmd
}

func newReportCommand(rt *runtime) *cobra.Command {
	var (
		records  []string
		name     string
		dateRaw  string
		nowRaw   string
		previous int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the timeliness report of the stored jobs",
		Long: `Print the timeliness report of every stored job for one report date. Jobs are
grouped into segments by tags of the form "<name>: <segment>". Records given
with --records are imported first.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return usageError("--name is required")
			}
			if previous < 0 {
				return usageError("--previous must not be negative")
			}
			now, err := parseTimeFlag("now", nowRaw)
			if err != nil {
				return err
			}
			if now.IsZero() {
				now = time.Now().UTC()
			}
			date, err := parseTimeFlag("date", dateRaw)
			if err != nil {
				return err
			}
			if date.IsZero() {
				date = now.Truncate(24 * time.Hour)
			}

			ctx := cmd.Context()
			recs, err := loadRecords(ctx, records)
			if err != nil {
				return err
			}
			if recs != nil {
				if err := rt.app.Import(ctx, recs); err != nil {
					return err
				}
			}

			report, err := rt.app.Report(ctx, timeliness.Options{
				Name:         name,
				Date:         date,
				Now:          now,
				PreviousRuns: previous,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(rt.outW, report)
			}
			printReport(rt.outW, report)
			return nil
		},
	}
	addRecordsFlag(cmd.Flags(), &records, "Record file or directory to import first. Repeatable.")
	cmd.Flags().StringVar(&name, "name", "", "Report name; selects the segment tags.")
	cmd.Flags().StringVar(&dateRaw, "date", "", "Report date (default: today).")
	cmd.Flags().StringVar(&nowRaw, "now", "", "Reference time for SLA checks (RFC 3339).")
	cmd.Flags().IntVar(&previous, "previous", timeliness.DefaultPreviousRuns, "Number of previous runs to average.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON.")
	return cmd
}

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long:  `Serve the HTTP API on the configured port until interrupted.`,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.Serve(cmd.Context())
		},
	}
}
