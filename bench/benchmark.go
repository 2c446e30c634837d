package bench

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/capbench/bench/trace"
)

// Benchmark sequences the configured profiles through the Sampler and the
// Controller and assembles the Report. It is created disabled; Enable starts a
// run, which ends with the finish handler receiving the report text.
type Benchmark struct {
	cfg      Config
	profiles []Profile
	host     EntityHost
	owner    Owner

	sampler    *Sampler
	controller *Controller
	onFinished func(report string)
	trace      *trace.RunTrace

	enabled  bool
	finished bool
	active   int // index into profiles

	report         Report
	evaluations    int
	elapsed        time.Duration // sum of delivered frame deltas since Enable
	profileStarted time.Duration
}

// New validates cfg and creates a disabled Benchmark populating host. owner
// may be nil when there is no primary context to hand control back to.
func New(cfg Config, host EntityHost, owner Owner) (*Benchmark, error) {
	if host == nil {
		return nil, fmt.Errorf("entity host is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid benchmark config: %w", err)
	}
	profiles, err := cfg.ResolveProfiles()
	if err != nil {
		return nil, err
	}
	return &Benchmark{
		cfg:        cfg,
		profiles:   profiles,
		host:       host,
		owner:      owner,
		sampler:    NewSampler(cfg.WindowSize),
		controller: NewController(host, cfg),
	}, nil
}

// OnFinished registers the handler invoked once, with the full report text,
// when the last profile finalises.
func (b *Benchmark) OnFinished(fn func(report string)) {
	b.onFinished = fn
}

// SetTrace enables decision recording into rt. Pass nil to disable.
func (b *Benchmark) SetTrace(rt *trace.RunTrace) {
	b.trace = rt
}

// Enable starts a run from the first profile with an empty report.
func (b *Benchmark) Enable() {
	b.controller.Reset()
	b.sampler.Reset()
	b.report = Report{}
	b.active = 0
	b.evaluations = 0
	b.elapsed = 0
	b.profileStarted = 0
	b.finished = false
	b.enabled = true
	b.controller.Begin(b.profiles[0])
	// The first tick carries the cost of the teardown above.
	b.controller.discardNext()
	if b.trace != nil {
		b.trace.Reset(time.Now())
	}
	logrus.Infof("Benchmark enabled: %d profiles, target %.0f fps, overload %.0f fps",
		len(b.profiles), b.cfg.TargetFPS, b.cfg.OverloadFPS)
	logrus.Infof("Profile %s started", b.profiles[0].Name)
}

// Disable stops sampling, discards any partial window and destroys every live
// entity. The report built so far is kept.
func (b *Benchmark) Disable() {
	if !b.enabled {
		return
	}
	b.enabled = false
	b.sampler.Reset()
	b.controller.destroyAll()
	logrus.Infof("Benchmark disabled")
}

// Enabled reports whether the benchmark is consuming ticks.
func (b *Benchmark) Enabled() bool {
	return b.enabled
}

// Finished reports whether the last run completed every profile.
func (b *Benchmark) Finished() bool {
	return b.finished
}

// OnTick consumes one frame delta in seconds.
func (b *Benchmark) OnTick(delta float64) {
	if !b.enabled {
		return
	}
	b.elapsed += time.Duration(delta * float64(time.Second))
	if !b.controller.consumeTick(delta) {
		return
	}
	fps, full := b.sampler.Add(delta)
	if !full {
		return
	}
	b.controller.discardNext()
	b.evaluate(fps)
}

// OnFixedUpdate applies the gravity pull on every fixed tick while a gravity
// profile is active, independent of sampling state.
func (b *Benchmark) OnFixedUpdate() {
	if !b.enabled || !b.controller.Profile().Gravity {
		return
	}
	for _, id := range b.host.LiveEntities() {
		b.host.SetVelocityTowardOrigin(id)
	}
}

// ActiveProfile returns the profile under test, or false when not running.
func (b *Benchmark) ActiveProfile() (Profile, bool) {
	if !b.enabled {
		return Profile{}, false
	}
	return b.controller.Profile(), true
}

// Profiles returns the run order.
func (b *Benchmark) Profiles() []Profile {
	out := make([]Profile, len(b.profiles))
	copy(out, b.profiles)
	return out
}

// State returns a copy of the controller state.
func (b *Benchmark) State() PopulationState {
	return b.controller.State()
}

// Observations returns the observations of the current refinement round.
func (b *Benchmark) Observations() []Observation {
	return b.controller.Results()
}

// Report returns the lines finalised so far.
func (b *Benchmark) Report() Report {
	lines := make([]ReportLine, len(b.report.Lines))
	copy(lines, b.report.Lines)
	return Report{Lines: lines}
}

func (b *Benchmark) evaluate(fps float64) {
	b.evaluations++
	profile := b.controller.Profile()
	before := b.controller.State()
	results := b.controller.Results()

	decision := b.controller.Evaluate(fps)
	logrus.Debugf("[eval %05d] %s entities=%d fps=%.2f step=%d -> %s",
		b.evaluations, profile.Name, before.EntityCount, fps, before.StepSize, decision)

	if decision == trace.DecisionFinalize {
		// Log the full round before the controller clears it.
		for _, obs := range append(results, Observation{Entities: before.EntityCount, FPS: fps}) {
			logrus.Debugf("%s %d %.2f", profile.Name, obs.Entities, obs.FPS)
		}
	}

	b.record(profile, before, fps, decision)

	if decision != trace.DecisionFinalize {
		return
	}
	b.finalize(profile, before.EntityCount)
	if b.finished {
		return
	}
	b.controller.Refine()
}

func (b *Benchmark) record(profile Profile, before PopulationState, fps float64, decision trace.Decision) {
	if b.trace == nil {
		return
	}
	b.trace.RecordEvaluation(trace.EvaluationRecord{
		Seq:           b.evaluations,
		Profile:       profile.Name,
		Elapsed:       b.elapsed,
		Entities:      before.EntityCount,
		FPS:           fps,
		StepSize:      before.StepSize,
		LastKnownGood: b.controller.State().LastKnownGood,
		Decision:      decision,
	})
}

// finalize appends the profile's report line and activates the next profile,
// or finishes the run after the last one.
func (b *Benchmark) finalize(profile Profile, lastTested int) {
	line := ReportLine{
		Profile:       profile.Name,
		LastKnownGood: b.controller.State().LastKnownGood,
		LastTested:    lastTested,
	}
	b.report.Lines = append(b.report.Lines, line)
	logrus.Infof("Profile %s converged: last known good %d, last tested %d",
		profile.Name, line.LastKnownGood, line.LastTested)

	if b.trace != nil {
		b.trace.RecordProfile(trace.ProfileRecord{
			Profile:       profile.Name,
			Started:       b.profileStarted,
			Finished:      b.elapsed,
			LastKnownGood: line.LastKnownGood,
			LastTested:    line.LastTested,
			Evaluations:   len(b.trace.EvaluationsFor(profile.Name)),
		})
	}
	b.profileStarted = b.elapsed

	b.active++
	if b.active >= len(b.profiles) {
		b.finish()
		return
	}
	next := b.profiles[b.active]
	b.controller.Begin(next)
	logrus.Infof("Profile %s started", next.Name)
}

func (b *Benchmark) finish() {
	b.Disable()
	b.controller.Reset()
	b.finished = true
	if b.owner != nil {
		b.owner.EnablePrimary()
	}

	text := b.report.String()
	logrus.Infof("Benchmark finished after %d evaluations:\n%s", b.evaluations, text)
	if b.onFinished != nil {
		b.onFinished(text)
	}
	if b.cfg.ReportPath == "" {
		return
	}
	// Best effort: a write failure is logged, never returned.
	if err := WriteReportFile(b.cfg.ReportPath, b.report); err != nil {
		logrus.Warnf("Could not write report to %s: %v", b.cfg.ReportPath, err)
	}
}
