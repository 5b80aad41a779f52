package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/specialistvlad/timeliness/internal/app"
	"github.com/specialistvlad/timeliness/internal/timeliness"
	"github.com/specialistvlad/timeliness/internal/urn"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed, color.Bold)
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printIndex(w io.Writer, view app.IndexView) {
	mode := "uncollapsed"
	if view.Collapsed {
		mode = "collapsed"
	}
	headerColor.Fprintf(w, "Lineage of %s (%s)\n", view.Root, mode)

	for rank, layer := range view.Layers {
		headerColor.Fprintf(w, "Rank %d\n", rank)
		for _, id := range layer {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	if len(view.Edges) > 0 {
		headerColor.Fprintln(w, "Edges")
		for _, e := range view.Edges {
			fmt.Fprintf(w, "  %s -> %s\n", urn.ShortName(e.From), urn.ShortName(e.To))
		}
	}

	if len(view.SlaProperties) > 0 {
		headerColor.Fprintln(w, "Inherited SLA properties")
		for _, id := range sortedKeys(view.SlaProperties) {
			props := view.SlaProperties[id]
			for _, key := range sortedKeys(props) {
				fmt.Fprintf(w, "  %s %s=%s\n", urn.ShortName(id), key, strings.Join(props[key], ","))
			}
		}
	}

	if view.Cycle != "" {
		warnColor.Fprintf(w, "Warning: %s\n", view.Cycle)
	}
}

func printPrediction(w io.Writer, view app.PredictionView) {
	fmt.Fprintf(w, "Root:           %s\n", view.Root)
	fmt.Fprintf(w, "Execution date: %s\n", view.ExecutionDate.Format(time.RFC3339))
	fmt.Fprint(w, "Landing time:   ")
	if view.Estimable {
		okColor.Fprintln(w, view.LandingTime)
	} else {
		errorColor.Fprintln(w, view.LandingTime)
	}
	for _, c := range view.Cycles {
		warnColor.Fprintf(w, "Warning: cyclic dependency %s -> %s ignored\n", urn.ShortName(c.From), urn.ShortName(c.To))
	}
}

func printReport(w io.Writer, report timeliness.Report) {
	headerColor.Fprintf(w, "Report %q for %s\n", report.Name, report.Date.Format("2006-01-02"))
	for _, seg := range report.Segments {
		stateColor := okColor
		switch {
		case seg.MissedSLA || seg.State == timeliness.SegmentFailed:
			stateColor = errorColor
		case seg.State != timeliness.SegmentCompleted:
			stateColor = warnColor
		}
		headerColor.Fprintf(w, "%s ", seg.Name)
		stateColor.Fprintf(w, "[%s]", seg.State)
		if seg.MissedSLA {
			errorColor.Fprint(w, " SLA missed")
		}
		fmt.Fprintln(w)

		for _, job := range seg.Jobs {
			fmt.Fprintf(w, "  %-40s %-12s avg duration %-10s avg landing %s\n",
				job.JobID, job.CurrentState, job.AverageDuration.Round(time.Second), job.AverageLandingTime.Round(time.Second))
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
