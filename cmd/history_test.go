package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/capbench/bench"
	"github.com/inference-sim/capbench/bench/history"
	"github.com/inference-sim/capbench/bench/trace"
)

func openHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestImportReport_StoresParsedLines(t *testing.T) {
	// GIVEN a report file from an earlier run
	store := openHistory(t)
	want := bench.Report{Lines: []bench.ReportLine{
		{Profile: bench.ProfileNoRender, LastKnownGood: 8500, LastTested: 25500},
		{Profile: bench.ProfileGravityRender, LastKnownGood: 1000, LastTested: 3250},
	}}
	path := filepath.Join(t.TempDir(), "performance.test")
	require.NoError(t, bench.WriteReportFile(path, want))

	// WHEN imported
	id, err := importReport(context.Background(), store, path)
	require.NoError(t, err)

	// THEN the stored run has the same lines
	run, err := store.LoadRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want, run.Report)
	assert.Empty(t, run.Evaluations)
}

func TestImportReport_MissingFile(t *testing.T) {
	_, err := importReport(context.Background(), openHistory(t), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestListHistory(t *testing.T) {
	store := openHistory(t)
	var out bytes.Buffer

	require.NoError(t, listHistory(context.Background(), store, 10, &out))
	assert.Equal(t, "No runs recorded.\n", out.String())

	_, err := store.SaveRun(context.Background(), history.Run{
		Seed:   3,
		Report: bench.Report{Lines: []bench.ReportLine{{Profile: bench.ProfileRender, LastKnownGood: 10, LastTested: 20}}},
	})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, listHistory(context.Background(), store, 10, &out))
	assert.Contains(t, out.String(), "#1 ")
	assert.Contains(t, out.String(), "seed=3 wall-clock")
	assert.Contains(t, out.String(), "Render          10 20\n")
}

func TestShowRun_PrintsEvaluationSummary(t *testing.T) {
	store := openHistory(t)
	id, err := store.SaveRun(context.Background(), history.Run{
		Seed:      5,
		Synthetic: true,
		Report:    bench.Report{Lines: []bench.ReportLine{{Profile: bench.ProfileNoRender, LastKnownGood: 0, LastTested: 1000}}},
		Evaluations: []trace.EvaluationRecord{
			{Seq: 1, Profile: bench.ProfileNoRender, FPS: 120, Decision: trace.DecisionGrow},
			{Seq: 2, Profile: bench.ProfileNoRender, Entities: 1000, FPS: 20, Decision: trace.DecisionFinalize},
		},
	})
	require.NoError(t, err)
	var out bytes.Buffer

	require.NoError(t, showRun(context.Background(), store, id, &out))

	assert.Contains(t, out.String(), "synthetic")
	assert.Contains(t, out.String(), "2 evaluations")
	assert.Contains(t, out.String(), "max entities=1000")
}
