package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/inference-sim/capbench/bench"
	"github.com/inference-sim/capbench/bench/chart"
	"github.com/inference-sim/capbench/bench/history"
	"github.com/inference-sim/capbench/bench/host"
	"github.com/inference-sim/capbench/bench/telemetry"
	"github.com/inference-sim/capbench/bench/trace"
	"github.com/inference-sim/capbench/bench/world"
)

// runBenchmark executes one full benchmark run as described by cfg, drawing
// to screen when non-nil and printing the report to out. Chart, history and
// telemetry outputs are produced after the run finishes.
func runBenchmark(ctx context.Context, cfg RunConfig, screen tcell.Screen, out io.Writer) (bench.Report, *trace.RunTrace, error) {
	if err := cfg.Validate(); err != nil {
		return bench.Report{}, nil, err
	}

	rng := bench.NewStreams(cfg.Seed)
	w := world.New(rng.Stream(bench.SubsystemSpawn))
	var clock host.FrameClock = host.NewWallClock()
	if cfg.Host.Synthetic {
		clock = host.NewCostClock(cfg.Host.Cost, rng.Stream(bench.SubsystemFrameJitter))
	}

	loop, err := host.NewLoop(cfg.Host, cfg.Benchmark, w, clock)
	if err != nil {
		return bench.Report{}, nil, err
	}
	if screen != nil {
		loop.SetRenderer(world.NewRenderer(screen))
	}
	rt := trace.NewRunTrace()
	b := loop.Benchmark()
	b.SetTrace(rt)
	b.OnFinished(func(report string) {
		fmt.Fprint(out, report)
	})

	logrus.Infof("Starting benchmark: seed=%d synthetic=%v profiles=%v", cfg.Seed, cfg.Host.Synthetic, cfg.Benchmark.Profiles)
	if err := loop.Run(ctx); err != nil {
		return b.Report(), rt, err
	}
	report := b.Report()
	logSummary(rt)

	if cfg.Chart != "" {
		if err := writeChart(cfg.Chart, rt); err != nil {
			return report, rt, err
		}
		logrus.Infof("Chart written to %s", cfg.Chart)
	}
	if cfg.History != "" {
		id, err := saveHistory(ctx, cfg, report, rt)
		if err != nil {
			return report, rt, err
		}
		logrus.Infof("Run %d saved to %s", id, cfg.History)
	}
	if err := exportTelemetry(ctx, rt, report); err != nil {
		logrus.Warnf("Telemetry export failed: %v", err)
	}
	return report, rt, nil
}

func logSummary(rt *trace.RunTrace) {
	summary := trace.Summarize(rt)
	logrus.Infof("%d evaluations: %v", summary.TotalEvaluations, summary.Decisions)
	for _, name := range rt.ProfileNames() {
		ps := summary.PerProfile[name]
		logrus.Infof("%-16s evaluations=%d backoffs=%d fps=[%.1f, %.1f] max entities=%d",
			name, ps.Evaluations, ps.Backoffs, ps.MinFPS, ps.PeakFPS, ps.MaxEntities)
	}
}

func writeChart(path string, rt *trace.RunTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := chart.WriteObservations(f, rt); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func saveHistory(ctx context.Context, cfg RunConfig, report bench.Report, rt *trace.RunTrace) (int64, error) {
	store, err := history.Open(ctx, cfg.History)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.SaveRun(ctx, history.Run{
		StartedAt:   rt.StartedAt,
		Seed:        cfg.Seed,
		Synthetic:   cfg.Host.Synthetic,
		Report:      report,
		Evaluations: rt.Evaluations,
	})
}

func exportTelemetry(ctx context.Context, rt *trace.RunTrace, report bench.Report) error {
	shutdown, enabled, err := telemetry.Setup(ctx, "capbench")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logrus.Warnf("Telemetry shutdown: %v", err)
		}
	}()
	if !enabled {
		return nil
	}
	return telemetry.ExportRun(ctx, otel.Tracer("capbench"), rt, report)
}
