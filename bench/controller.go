package bench

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/capbench/bench/trace"
)

// Observation is one (entity count, fps) evaluation of the current round.
type Observation struct {
	Entities int
	FPS      float64
}

// PopulationState is the mutable controller state for the active profile.
type PopulationState struct {
	EntityCount int
	// StepSize is the number of entities added per growth evaluation. Halves on
	// each overload, never below 1.
	StepSize      int
	LastKnownGood int
	// SettleRemaining is the benchmark time in seconds to wait before sampling
	// resumes. Only set while a heavy profile is active.
	SettleRemaining float64
	// IgnoreNext discards the first tick after a population change.
	IgnoreNext bool
}

// Controller drives the entity population of one profile toward the largest
// count that sustains the target rate: a linear ramp by StepSize, and on
// overload a restart from LastKnownGood-StepSize with the step halved.
type Controller struct {
	host    EntityHost
	cfg     Config
	profile Profile
	state   PopulationState
	results []Observation
}

// NewController creates a Controller populating host.
func NewController(host EntityHost, cfg Config) *Controller {
	return &Controller{
		host: host,
		cfg:  cfg,
		state: PopulationState{
			StepSize: cfg.InitialStep,
		},
	}
}

// Begin makes p the active profile and resets the search (step back to the
// initial size, last known-good to 0). Live entities are left alone; the next
// refinement round clears them.
func (c *Controller) Begin(p Profile) {
	c.profile = p
	c.state.StepSize = c.cfg.InitialStep
	c.state.LastKnownGood = 0
}

// Reset returns the controller to its pristine state and destroys every live
// entity.
func (c *Controller) Reset() {
	c.destroyAll()
	c.state = PopulationState{StepSize: c.cfg.InitialStep}
	c.results = nil
}

// Evaluate applies one fps observation at the current entity count.
// DecisionFinalize leaves the population untouched; the caller finalises the
// profile and then runs Refine.
func (c *Controller) Evaluate(fps float64) trace.Decision {
	c.results = append(c.results, Observation{Entities: c.state.EntityCount, FPS: fps})

	switch {
	case fps > c.cfg.TargetFPS:
		c.state.LastKnownGood = c.state.EntityCount
		c.grow()
		return trace.DecisionGrow
	case fps < c.cfg.OverloadFPS:
		// At step 1 the next halving would reach 0: no finer resolution exists.
		if len(c.results) >= c.profile.MinObservations || c.state.StepSize <= 1 {
			return trace.DecisionFinalize
		}
		c.Refine()
		return trace.DecisionBackoff
	default:
		c.grow()
		return trace.DecisionHold
	}
}

// Refine starts a refinement round: halve the step, drop the round's
// observations, clear the population and rebuild it to the backoff point
// max(LastKnownGood-StepSize, 0).
func (c *Controller) Refine() {
	c.state.StepSize = max(c.state.StepSize/2, 1)
	c.results = nil

	c.destroyAll()
	target := max(c.state.LastKnownGood-c.state.StepSize, 0)
	logrus.Debugf("%s: next round from %d entities, step %d", c.profile.Name, target, c.state.StepSize)
	for c.state.EntityCount < target {
		c.spawn()
	}
	c.populationChanged()
}

// State returns a copy of the controller state.
func (c *Controller) State() PopulationState {
	return c.state
}

// Results returns the observations of the current round.
func (c *Controller) Results() []Observation {
	out := make([]Observation, len(c.results))
	copy(out, c.results)
	return out
}

// Profile returns the active profile.
func (c *Controller) Profile() Profile {
	return c.profile
}

func (c *Controller) grow() {
	for range c.state.StepSize {
		c.spawn()
	}
	c.populationChanged()
}

func (c *Controller) spawn() {
	c.host.CreateEntity(c.profile.Render, c.profile.Collision)
	c.state.EntityCount++
}

func (c *Controller) destroyAll() {
	for _, id := range c.host.LiveEntities() {
		c.host.DestroyEntity(id)
	}
	c.state.EntityCount = 0
}

// populationChanged marks the next tick as contaminated and, for heavy
// profiles, holds sampling until motion settles.
func (c *Controller) populationChanged() {
	c.state.IgnoreNext = true
	if c.profile.Heavy() {
		c.state.SettleRemaining = c.cfg.SettleDelay
	}
}

// consumeTick applies the per-tick sample gates. It returns false when the
// tick must not be recorded.
func (c *Controller) consumeTick(delta float64) bool {
	if c.state.IgnoreNext {
		c.state.IgnoreNext = false
		return false
	}
	if c.state.SettleRemaining > 0 {
		c.state.SettleRemaining -= delta
		return false
	}
	return true
}

// discardNext suppresses the next tick: after an evaluation, and on Enable.
func (c *Controller) discardNext() {
	c.state.IgnoreNext = true
}
