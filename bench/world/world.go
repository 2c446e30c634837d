package world

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/inference-sim/capbench/bench"
)

const (
	// DefaultBounds is the half-extent of the spawn square.
	DefaultBounds = 100.0
	// ColliderRadius is the radius of every collision shape.
	ColliderRadius = 1.0
	// SpriteGlyph is drawn for every sprite.
	SpriteGlyph = '*'
)

// handle links a benchmark EntityID to its ark entity.
type handle struct {
	entity    ecs.Entity
	render    bool
	collision bool
}

// World is an ark-backed bench.EntityHost. It is not safe for concurrent use.
type World struct {
	ecs    *ecs.World
	bounds float64
	rng    *rand.Rand

	bodies     *ecs.Map2[Position, Velocity]
	positions  *ecs.Map[Position]
	velocities *ecs.Map[Velocity]
	sprites    *ecs.Map[Sprite]
	colliders  *ecs.Map[Collider]

	moving   *ecs.Filter2[Position, Velocity]
	drawable *ecs.Filter2[Position, Sprite]
	solid    *ecs.Filter2[Position, Collider]

	handles   map[bench.EntityID]handle
	nextID    bench.EntityID
	nSprites  int
	nSolids   int
	grid      *SpatialGrid
	solidBuf  []*Position
	radiusBuf []float64

	// Contacts is the number of overlapping collider pairs resolved by the
	// most recent Step.
	Contacts int
}

var _ bench.EntityHost = (*World)(nil)

// New creates an empty world whose spawn positions are drawn from rng.
func New(rng *rand.Rand) *World {
	ew := ecs.NewWorld()
	w := &ew
	return &World{
		ecs:        w,
		bounds:     DefaultBounds,
		rng:        rng,
		bodies:     ecs.NewMap2[Position, Velocity](w),
		positions:  ecs.NewMap[Position](w),
		velocities: ecs.NewMap[Velocity](w),
		sprites:    ecs.NewMap[Sprite](w),
		colliders:  ecs.NewMap[Collider](w),
		moving:     ecs.NewFilter2[Position, Velocity](w),
		drawable:   ecs.NewFilter2[Position, Sprite](w),
		solid:      ecs.NewFilter2[Position, Collider](w),
		handles:    make(map[bench.EntityID]handle),
		grid:       NewSpatialGrid(DefaultBounds, 2*ColliderRadius),
	}
}

// Bounds returns the half-extent of the spawn square.
func (w *World) Bounds() float64 {
	return w.bounds
}

// CreateEntity spawns an entity at rest at a uniform random position in the
// spawn square.
func (w *World) CreateEntity(render, collision bool) bench.EntityID {
	pos := Position{
		X: (w.rng.Float64()*2 - 1) * w.bounds,
		Y: (w.rng.Float64()*2 - 1) * w.bounds,
	}
	e := w.bodies.NewEntity(&pos, &Velocity{})
	if render {
		w.sprites.Add(e, &Sprite{Glyph: SpriteGlyph})
		w.nSprites++
	}
	if collision {
		w.colliders.Add(e, &Collider{Radius: ColliderRadius})
		w.nSolids++
	}

	w.nextID++
	w.handles[w.nextID] = handle{entity: e, render: render, collision: collision}
	return w.nextID
}

// DestroyEntity removes the entity. Unknown IDs are ignored.
func (w *World) DestroyEntity(id bench.EntityID) {
	h, ok := w.handles[id]
	if !ok {
		return
	}
	w.ecs.RemoveEntity(h.entity)
	delete(w.handles, id)
	if h.render {
		w.nSprites--
	}
	if h.collision {
		w.nSolids--
	}
}

// SetVelocityTowardOrigin sets the velocity to minus the position, so speed
// grows with distance from the origin.
func (w *World) SetVelocityTowardOrigin(id bench.EntityID) {
	h, ok := w.handles[id]
	if !ok {
		return
	}
	pos := w.positions.Get(h.entity)
	vel := w.velocities.Get(h.entity)
	vel.X, vel.Y = -pos.X, -pos.Y
}

// LiveEntities returns the IDs of all live entities in no particular order.
func (w *World) LiveEntities() []bench.EntityID {
	ids := make([]bench.EntityID, 0, len(w.handles))
	for id := range w.handles {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.handles)
}

// Sprites returns the number of live drawable entities.
func (w *World) Sprites() int {
	return w.nSprites
}

// Colliders returns the number of live entities with a collision shape.
func (w *World) Colliders() int {
	return w.nSolids
}

// Position returns the entity position.
func (w *World) Position(id bench.EntityID) (Position, bool) {
	h, ok := w.handles[id]
	if !ok {
		return Position{}, false
	}
	return *w.positions.Get(h.entity), true
}

// SetPosition moves the entity.
func (w *World) SetPosition(id bench.EntityID, x, y float64) bool {
	h, ok := w.handles[id]
	if !ok {
		return false
	}
	pos := w.positions.Get(h.entity)
	pos.X, pos.Y = x, y
	return true
}

// Velocity returns the entity velocity.
func (w *World) Velocity(id bench.EntityID) (Velocity, bool) {
	h, ok := w.handles[id]
	if !ok {
		return Velocity{}, false
	}
	return *w.velocities.Get(h.entity), true
}

// Step advances physics by dt seconds: integrate velocities, then push apart
// overlapping colliders.
func (w *World) Step(dt float64) {
	query := w.moving.Query()
	for query.Next() {
		pos, vel := query.Get()
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}
	w.resolveCollisions()
}

// resolveCollisions separates every overlapping collider pair along the line
// between their centres, half each.
func (w *World) resolveCollisions() {
	w.Contacts = 0
	w.solidBuf = w.solidBuf[:0]
	w.radiusBuf = w.radiusBuf[:0]
	w.grid.Clear()

	query := w.solid.Query()
	for query.Next() {
		pos, col := query.Get()
		w.grid.Add(int32(len(w.solidBuf)), pos.X, pos.Y)
		w.solidBuf = append(w.solidBuf, pos)
		w.radiusBuf = append(w.radiusBuf, col.Radius)
	}

	for i, a := range w.solidBuf {
		cx, cy := w.grid.CellOf(a.X, a.Y)
		w.grid.Neighbors(cx, cy, func(j int32) {
			// Each pair once.
			if int(j) <= i {
				return
			}
			b := w.solidBuf[j]
			dx, dy := b.X-a.X, b.Y-a.Y
			minDist := w.radiusBuf[i] + w.radiusBuf[j]
			distSq := dx*dx + dy*dy
			if distSq >= minDist*minDist {
				return
			}
			w.Contacts++
			dist := math.Sqrt(distSq)
			var push float64
			if dist == 0 {
				// Coincident centres: separate along x.
				dx, dy = 1, 0
				push = minDist / 2
			} else {
				push = (minDist - dist) / 2 / dist
			}
			a.X -= dx * push
			a.Y -= dy * push
			b.X += dx * push
			b.Y += dy * push
		})
	}
}
