// Package world provides the ECS entity/physics host the benchmark populates.
// Entities live in an ark world; physics is velocity integration plus circle
// collision resolved through a uniform spatial grid, and rendering draws
// sprites onto a tcell screen.
package world

// Position is the entity centre in world units. The spawn area is
// [-Bounds, Bounds] on both axes.
type Position struct {
	X, Y float64
}

// Velocity in world units per second.
type Velocity struct {
	X, Y float64
}

// Sprite marks an entity as drawable.
type Sprite struct {
	Glyph rune
}

// Collider is a circle collision shape centred on the entity position.
type Collider struct {
	Radius float64
}
