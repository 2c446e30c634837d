package bench

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inference-sim/capbench/bench/internal/testutil"
)

// fakeEntity is the state fakeHost keeps per live entity.
type fakeEntity struct {
	render    bool
	collision bool
	pulled    int
}

// fakeHost is an in-memory EntityHost that records every call.
type fakeHost struct {
	next      EntityID
	live      map[EntityID]*fakeEntity
	created   int
	destroyed int
	pulls     int
}

func newFakeHost() *fakeHost {
	return &fakeHost{live: make(map[EntityID]*fakeEntity)}
}

func (h *fakeHost) CreateEntity(render, collision bool) EntityID {
	h.next++
	h.live[h.next] = &fakeEntity{render: render, collision: collision}
	h.created++
	return h.next
}

func (h *fakeHost) DestroyEntity(id EntityID) {
	if _, ok := h.live[id]; ok {
		delete(h.live, id)
		h.destroyed++
	}
}

func (h *fakeHost) SetVelocityTowardOrigin(id EntityID) {
	if e, ok := h.live[id]; ok {
		e.pulled++
		h.pulls++
	}
}

func (h *fakeHost) LiveEntities() []EntityID {
	ids := make([]EntityID, 0, len(h.live))
	for id := range h.live {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// fakeOwner counts EnablePrimary calls.
type fakeOwner struct {
	primaryEnabled int
}

func (o *fakeOwner) EnablePrimary() { o.primaryEnabled++ }

// testConfig returns the default tuning without a report file.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ReportPath = ""
	return cfg
}

func newTestBenchmark(t *testing.T, cfg Config) (*Benchmark, *fakeHost, *fakeOwner) {
	t.Helper()
	host := newFakeHost()
	owner := &fakeOwner{}
	b, err := New(cfg, host, owner)
	require.NoError(t, err)
	return b, host, owner
}

// feed delivers the given deltas as ticks.
func feed(b *Benchmark, deltas []float64) {
	for _, d := range deltas {
		b.OnTick(d)
	}
}

// runToCompletion ticks the benchmark with frame deltas derived from model
// until it finishes or maxTicks is reached. Returns the ticks used.
func runToCompletion(b *Benchmark, host *fakeHost, model func(entities int, p Profile) float64, maxTicks int) int {
	ticks := 0
	for b.Enabled() && ticks < maxTicks {
		p, _ := b.ActiveProfile()
		b.OnTick(1.0 / model(len(host.live), p))
		ticks++
	}
	return ticks
}

// countOnly adapts an fps model that ignores the profile.
func countOnly(m testutil.FPSModel) func(int, Profile) float64 {
	return func(n int, _ Profile) float64 { return m(n) }
}
