package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/inference-sim/capbench/bench"
	benchtrace "github.com/inference-sim/capbench/bench/trace"
)

// Span and event names.
const (
	SpanRun        = "capbench.run"
	SpanProfile    = "capbench.profile"
	EventEvaluated = "evaluation"
)

// ExportRun replays a recorded run as spans: one root span for the run, one
// child per finalised profile, and one event per evaluation on its profile's
// span. Timestamps are rt.StartedAt plus benchmark time. Evaluations of a
// profile that never finalised land on the root span, which is then marked as
// an error.
func ExportRun(ctx context.Context, tracer oteltrace.Tracer, rt *benchtrace.RunTrace, report bench.Report) error {
	if rt == nil {
		return fmt.Errorf("run trace is required")
	}
	at := func(d time.Duration) time.Time { return rt.StartedAt.Add(d) }

	var end time.Duration
	if n := len(rt.Evaluations); n > 0 {
		end = rt.Evaluations[n-1].Elapsed
	}

	ctx, root := tracer.Start(ctx, SpanRun,
		oteltrace.WithTimestamp(rt.StartedAt),
		oteltrace.WithAttributes(
			attribute.Int("capbench.evaluations", len(rt.Evaluations)),
			attribute.Int("capbench.profiles", len(rt.Profiles)),
		),
	)

	spans := make(map[string]oteltrace.Span, len(rt.Profiles))
	for _, p := range rt.Profiles {
		_, span := tracer.Start(ctx, SpanProfile,
			oteltrace.WithTimestamp(at(p.Started)),
			oteltrace.WithAttributes(
				attribute.String("capbench.profile", p.Profile),
				attribute.Int("capbench.last_known_good", p.LastKnownGood),
				attribute.Int("capbench.last_tested", p.LastTested),
				attribute.Int("capbench.evaluations", p.Evaluations),
			),
		)
		spans[p.Profile] = span
	}

	orphaned := 0
	for _, ev := range rt.Evaluations {
		span, ok := spans[ev.Profile]
		if !ok {
			span = root
			orphaned++
		}
		span.AddEvent(EventEvaluated,
			oteltrace.WithTimestamp(at(ev.Elapsed)),
			oteltrace.WithAttributes(
				attribute.Int("capbench.seq", ev.Seq),
				attribute.String("capbench.profile", ev.Profile),
				attribute.Int("capbench.entities", ev.Entities),
				attribute.Float64("capbench.fps", ev.FPS),
				attribute.Int("capbench.step_size", ev.StepSize),
				attribute.String("capbench.decision", string(ev.Decision)),
			),
		)
	}

	for _, p := range rt.Profiles {
		spans[p.Profile].End(oteltrace.WithTimestamp(at(p.Finished)))
	}
	if orphaned > 0 {
		root.SetStatus(codes.Error, fmt.Sprintf("%d evaluations belong to unfinished profiles", orphaned))
	}
	root.SetAttributes(attribute.String("capbench.report", report.String()))
	root.End(oteltrace.WithTimestamp(at(end)))
	return nil
}
