package host

import (
	"math/rand"
	"time"

	"github.com/inference-sim/capbench/bench/world"
)

// FrameClock reports how long each frame took.
type FrameClock interface {
	// Start marks the beginning of the first frame.
	Start()
	// Next returns the duration in seconds of the frame that just ended.
	Next(w *world.World) float64
}

// WallClock measures real elapsed time between frames.
type WallClock struct {
	now  func() time.Time
	last time.Time
}

// NewWallClock creates a WallClock reading time.Now.
func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

func (c *WallClock) Start() {
	c.last = c.now()
}

func (c *WallClock) Next(*world.World) float64 {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	delta := now.Sub(c.last).Seconds()
	c.last = now
	return delta
}

// CostClock models frame time from the world's population instead of
// measuring it, so runs are fast and reproducible for a given seed.
type CostClock struct {
	coeffs CostCoeffs
	rng    *rand.Rand
}

// NewCostClock creates a CostClock. rng drives the jitter and may be nil when
// coeffs.Jitter is 0.
func NewCostClock(coeffs CostCoeffs, rng *rand.Rand) *CostClock {
	return &CostClock{coeffs: coeffs, rng: rng}
}

func (c *CostClock) Start() {}

func (c *CostClock) Next(w *world.World) float64 {
	return c.Cost(w.Len(), w.Sprites(), w.Colliders(), w.Contacts)
}

// Cost returns the modelled frame time for the given population.
func (c *CostClock) Cost(entities, sprites, colliders, contacts int) float64 {
	cost := c.coeffs.Base +
		c.coeffs.PerEntity*float64(entities) +
		c.coeffs.PerSprite*float64(sprites) +
		c.coeffs.PerCollider*float64(colliders) +
		c.coeffs.PerContact*float64(contacts)
	if c.coeffs.Jitter > 0 && c.rng != nil {
		cost *= 1 + c.coeffs.Jitter*(2*c.rng.Float64()-1)
	}
	return cost
}
