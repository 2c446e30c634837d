// Package chart renders a finished run's evaluations as an HTML page of
// interactive charts.
package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/inference-sim/capbench/bench/trace"
)

// WriteObservations renders two charts for rt into w: fps against entity
// count, one scatter series per profile, and entity count over benchmark
// time.
func WriteObservations(w io.Writer, rt *trace.RunTrace) error {
	if rt == nil || len(rt.Evaluations) == 0 {
		return fmt.Errorf("run trace has no evaluations")
	}
	page := components.NewPage()
	page.PageTitle = "capbench"
	page.AddCharts(fpsScatter(rt), populationLine(rt))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}
	return nil
}

func fpsScatter(rt *trace.RunTrace) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Frame rate by population",
			Subtitle: fmt.Sprintf("%d evaluations", len(rt.Evaluations)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "entities", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "fps", Type: "value"}),
	)
	for _, name := range rt.ProfileNames() {
		evals := rt.EvaluationsFor(name)
		data := make([]opts.ScatterData, 0, len(evals))
		for _, ev := range evals {
			// JSON has no infinity; zero-time windows are left off the plot.
			if math.IsInf(ev.FPS, 0) || math.IsNaN(ev.FPS) {
				continue
			}
			data = append(data, opts.ScatterData{
				Name:       string(ev.Decision),
				Value:      []interface{}{ev.Entities, ev.FPS},
				SymbolSize: 6,
			})
		}
		scatter.AddSeries(name, data)
	}
	return scatter
}

func populationLine(rt *trace.RunTrace) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Population over time"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "seconds", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "entities", Type: "value"}),
	)
	for _, name := range rt.ProfileNames() {
		evals := rt.EvaluationsFor(name)
		data := make([]opts.LineData, 0, len(evals))
		for _, ev := range evals {
			data = append(data, opts.LineData{
				Value: []interface{}{ev.Elapsed.Seconds(), ev.Entities},
			})
		}
		line.AddSeries(name, data)
	}
	return line
}
