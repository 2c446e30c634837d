package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/capbench/bench"
	"github.com/inference-sim/capbench/bench/world"
)

// ErrFrameLimit is returned by Run when MaxFrames elapse before the benchmark
// finishes.
var ErrFrameLimit = errors.New("frame limit reached before the benchmark finished")

// Loop is the benchmark's runtime. It steps the world at a fixed rate, feeds
// every frame delta to the benchmark and regains control through
// EnablePrimary when the last profile finalises. Not safe for concurrent use.
type Loop struct {
	cfg      Config
	world    *world.World
	clock    FrameClock
	renderer *world.Renderer
	bench    *bench.Benchmark
	perf     *PerfStats

	primary     bool
	frames      int
	fixedSteps  int
	accumulator float64
}

var _ bench.Owner = (*Loop)(nil)

// NewLoop creates a loop owning w and a benchmark configured by benchCfg that
// populates it.
func NewLoop(cfg Config, benchCfg bench.Config, w *world.World, clock FrameClock) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid host config: %w", err)
	}
	if w == nil || clock == nil {
		return nil, fmt.Errorf("world and frame clock are required")
	}
	l := &Loop{
		cfg:     cfg,
		world:   w,
		clock:   clock,
		perf:    NewPerfStats(120),
		primary: true,
	}
	b, err := bench.New(benchCfg, w, l)
	if err != nil {
		return nil, err
	}
	l.bench = b
	return l, nil
}

// Benchmark returns the benchmark driven by this loop.
func (l *Loop) Benchmark() *bench.Benchmark {
	return l.bench
}

// SetRenderer draws every frame through r. Pass nil for headless runs.
func (l *Loop) SetRenderer(r *world.Renderer) {
	l.renderer = r
}

// EnablePrimary ends the benchmark context; Run returns after the current
// frame.
func (l *Loop) EnablePrimary() {
	l.primary = true
	logrus.Infof("Primary context re-enabled after %d frames", l.frames)
}

// Frames returns the number of frames run by the last Run.
func (l *Loop) Frames() int {
	return l.frames
}

// FixedSteps returns the number of physics ticks run by the last Run.
func (l *Loop) FixedSteps() int {
	return l.fixedSteps
}

// Perf returns the per-phase timing window.
func (l *Loop) Perf() *PerfStats {
	return l.perf
}

// Run enables the benchmark and loops until it finishes. It returns ctx's
// error on cancellation and ErrFrameLimit when MaxFrames elapse first; in both
// cases the benchmark is disabled and the world emptied.
func (l *Loop) Run(ctx context.Context) error {
	l.primary = false
	l.frames = 0
	l.fixedSteps = 0
	l.accumulator = 0
	l.clock.Start()
	l.bench.Enable()

	for !l.primary {
		if err := ctx.Err(); err != nil {
			l.abort("cancelled")
			return err
		}
		if l.cfg.MaxFrames > 0 && l.frames >= l.cfg.MaxFrames {
			l.abort("frame limit")
			return fmt.Errorf("%w (%d frames)", ErrFrameLimit, l.frames)
		}
		l.frame()
	}

	for _, name := range l.perf.SortedNames() {
		logrus.Debugf("phase %-8s avg %v", name, l.perf.Avg(name))
	}
	return nil
}

func (l *Loop) abort(reason string) {
	logrus.Warnf("Benchmark aborted (%s) after %d frames", reason, l.frames)
	l.bench.Disable()
	l.primary = true
}

func (l *Loop) frame() {
	delta := l.clock.Next(l.world)
	l.frames++
	l.bench.OnTick(delta)
	if l.primary {
		return
	}

	start := time.Now()
	dt := 1 / l.cfg.FixedRate
	l.accumulator += delta
	for steps := 0; l.accumulator >= dt; steps++ {
		if steps == l.cfg.MaxFixedSteps {
			l.accumulator = 0
			break
		}
		l.bench.OnFixedUpdate()
		l.world.Step(dt)
		l.accumulator -= dt
		l.fixedSteps++
	}
	l.perf.Record("physics", time.Since(start))

	if l.renderer != nil {
		start = time.Now()
		l.renderer.Draw(l.world)
		l.perf.Record("render", time.Since(start))
	}
}
