package bench

// EntityID is an opaque handle to an entity owned by an EntityHost.
type EntityID uint64

// EntityHost is the entity/physics collaborator the benchmark populates.
// Calls are synchronous: an entity returned by CreateEntity is live before the
// call returns.
type EntityHost interface {
	CreateEntity(render, collision bool) EntityID
	DestroyEntity(id EntityID)
	// SetVelocityTowardOrigin points the entity's velocity at the origin,
	// proportional to its distance from it.
	SetVelocityTowardOrigin(id EntityID)
	LiveEntities() []EntityID
}

// Owner is the runtime that hosts the benchmark. EnablePrimary hands control
// back to the owner's primary context once the run has finished.
type Owner interface {
	EnablePrimary()
}
