package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/capbench/bench"
	"github.com/inference-sim/capbench/bench/history"
	"github.com/inference-sim/capbench/bench/trace"
)

var (
	// CLI flags for the history command
	historyDB       string // SQLite history database
	historyLimit    int    // Runs to list
	historyRunID    int64  // Single run to show
	importPath      string // Report file to import
	historyLogLevel string // Log verbosity level
)

// historyCmd lists, shows and imports stored runs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or import stored benchmark runs",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(historyLogLevel)
		ctx := context.Background()

		store, err := history.Open(ctx, historyDB)
		if err != nil {
			logrus.Fatalf("Failed to open history: %v", err)
		}
		defer store.Close()

		switch {
		case importPath != "":
			id, err := importReport(ctx, store, importPath)
			if err != nil {
				logrus.Fatalf("Import failed: %v", err)
			}
			fmt.Printf("Imported %s as run %d\n", importPath, id)
		case historyRunID != 0:
			if err := showRun(ctx, store, historyRunID, os.Stdout); err != nil {
				logrus.Fatalf("%v", err)
			}
		default:
			if err := listHistory(ctx, store, historyLimit, os.Stdout); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
	},
}

func listHistory(ctx context.Context, store *history.Store, limit int, out io.Writer) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		writeRunHeader(out, run)
		fmt.Fprint(out, run.Report.String())
	}
	return nil
}

func showRun(ctx context.Context, store *history.Store, id int64, out io.Writer) error {
	run, err := store.LoadRun(ctx, id)
	if err != nil {
		return err
	}
	writeRunHeader(out, run)
	fmt.Fprint(out, run.Report.String())

	rt := &trace.RunTrace{StartedAt: run.StartedAt, Evaluations: run.Evaluations}
	summary := trace.Summarize(rt)
	fmt.Fprintf(out, "%d evaluations\n", summary.TotalEvaluations)
	for _, name := range rt.ProfileNames() {
		ps := summary.PerProfile[name]
		fmt.Fprintf(out, "%-16s evaluations=%d backoffs=%d peak fps=%.1f max entities=%d\n",
			name, ps.Evaluations, ps.Backoffs, ps.PeakFPS, ps.MaxEntities)
	}
	return nil
}

// importReport stores a report file written by an earlier run. Imported runs
// carry no evaluations.
func importReport(ctx context.Context, store *history.Store, path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read report: %w", err)
	}
	report, err := bench.ParseReport(string(data))
	if err != nil {
		return 0, err
	}
	startedAt := time.Now()
	if info, err := os.Stat(path); err == nil {
		startedAt = info.ModTime()
	}
	return store.SaveRun(ctx, history.Run{StartedAt: startedAt, Report: report})
}

func writeRunHeader(out io.Writer, run history.Run) {
	mode := "wall-clock"
	if run.Synthetic {
		mode = "synthetic"
	}
	fmt.Fprintf(out, "#%d %s seed=%d %s\n", run.ID, run.StartedAt.Local().Format(time.RFC3339), run.Seed, mode)
}
