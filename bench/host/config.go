// Package host runs the benchmark inside a frame loop: it owns the entity
// world, measures or models each frame's duration, drives the fixed-rate
// physics ticks and hands control back when the run finishes.
package host

import "fmt"

// Default loop tuning.
const (
	DefaultFixedRate = 60.0
	// DefaultMaxFixedSteps bounds the physics catch-up per frame so a slow
	// frame cannot snowball into slower ones.
	DefaultMaxFixedSteps = 8
)

// CostCoeffs parameterise the synthetic frame-cost model, in seconds:
// base + perEntity*N + perSprite*S + perCollider*C + perContact*K,
// scaled by a uniform jitter factor in [1-jitter, 1+jitter].
type CostCoeffs struct {
	Base        float64 `yaml:"base" env:"BASE"`
	PerEntity   float64 `yaml:"per_entity" env:"PER_ENTITY"`
	PerSprite   float64 `yaml:"per_sprite" env:"PER_SPRITE"`
	PerCollider float64 `yaml:"per_collider" env:"PER_COLLIDER"`
	PerContact  float64 `yaml:"per_contact" env:"PER_CONTACT"`
	Jitter      float64 `yaml:"jitter" env:"JITTER"`
}

// DefaultCostCoeffs returns a model of a runtime that idles at 120 fps.
func DefaultCostCoeffs() CostCoeffs {
	return CostCoeffs{
		Base:        1.0 / 120,
		PerEntity:   1e-6,
		PerSprite:   1e-6,
		PerCollider: 2e-6,
		PerContact:  1e-6,
		Jitter:      0.05,
	}
}

// Config holds the frame-loop settings.
type Config struct {
	// FixedRate is the physics tick rate in Hz.
	FixedRate     float64 `yaml:"fixed_rate" env:"CAPBENCH_FIXED_RATE"`
	MaxFixedSteps int     `yaml:"max_fixed_steps" env:"CAPBENCH_MAX_FIXED_STEPS"`
	// MaxFrames stops the loop after this many frames; 0 means unbounded.
	MaxFrames int `yaml:"max_frames" env:"CAPBENCH_MAX_FRAMES"`
	// Synthetic selects the CostClock instead of wall-clock timing.
	Synthetic bool       `yaml:"synthetic" env:"CAPBENCH_SYNTHETIC"`
	Cost      CostCoeffs `yaml:"cost" envPrefix:"CAPBENCH_COST_"`
}

// DefaultConfig returns wall-clock timing at 60 Hz physics with no frame cap.
func DefaultConfig() Config {
	return Config{
		FixedRate:     DefaultFixedRate,
		MaxFixedSteps: DefaultMaxFixedSteps,
		Cost:          DefaultCostCoeffs(),
	}
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	if c.FixedRate <= 0 {
		return fmt.Errorf("fixed_rate must be positive, got %f", c.FixedRate)
	}
	if c.MaxFixedSteps < 1 {
		return fmt.Errorf("max_fixed_steps must be at least 1, got %d", c.MaxFixedSteps)
	}
	if c.MaxFrames < 0 {
		return fmt.Errorf("max_frames must be non-negative, got %d", c.MaxFrames)
	}
	return c.Cost.Validate()
}

// Validate checks that the cost model produces positive frame times.
func (c CostCoeffs) Validate() error {
	if c.Base <= 0 {
		return fmt.Errorf("cost.base must be positive, got %f", c.Base)
	}
	if c.PerEntity < 0 || c.PerSprite < 0 || c.PerCollider < 0 || c.PerContact < 0 {
		return fmt.Errorf("cost coefficients must be non-negative")
	}
	if c.Jitter < 0 || c.Jitter >= 1 {
		return fmt.Errorf("cost.jitter must be in [0, 1), got %f", c.Jitter)
	}
	return nil
}
