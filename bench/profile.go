package bench

import "fmt"

// Profile describes one workload configuration under test. Entities created
// while a profile is active carry a sprite when Render is set and a collision
// shape when Collision is set. Gravity profiles pull every live entity toward
// the origin on each fixed tick.
type Profile struct {
	Name      string
	Render    bool
	Collision bool
	Gravity   bool
	// MinObservations is the number of evaluations a round must accumulate
	// before an overload finalises the profile.
	MinObservations int
}

// Heavy reports whether the profile is physics driven and needs a settle
// delay after every population change.
func (p Profile) Heavy() bool {
	return p.Gravity
}

func (p Profile) String() string {
	return p.Name
}

// Profile names in their default run order.
const (
	ProfileNoRender        = "NoRender"
	ProfileRender          = "Render"
	ProfileCollision       = "Collision"
	ProfileCollisionRender = "CollisionRender"
	ProfileGravity         = "Gravity"
	ProfileGravityRender   = "GravityRender"
)

// knownProfiles holds the workload flags per profile name. MinObservations is
// filled in from Config when profiles are resolved.
var knownProfiles = map[string]Profile{
	ProfileNoRender:        {Name: ProfileNoRender},
	ProfileRender:          {Name: ProfileRender, Render: true},
	ProfileCollision:       {Name: ProfileCollision, Collision: true},
	ProfileCollisionRender: {Name: ProfileCollisionRender, Render: true, Collision: true},
	ProfileGravity:         {Name: ProfileGravity, Collision: true, Gravity: true},
	ProfileGravityRender:   {Name: ProfileGravityRender, Render: true, Collision: true, Gravity: true},
}

// DefaultProfileOrder is the run order used when the configuration does not
// name profiles explicitly. Cost grows along the list.
var DefaultProfileOrder = []string{
	ProfileNoRender,
	ProfileRender,
	ProfileCollision,
	ProfileCollisionRender,
	ProfileGravity,
	ProfileGravityRender,
}

// IsValidProfile returns true if name is a recognized profile.
func IsValidProfile(name string) bool {
	_, ok := knownProfiles[name]
	return ok
}

// LookupProfile returns the profile flags for name with the given convergence
// thresholds applied.
func LookupProfile(name string, minObservations, heavyMinObservations int) (Profile, error) {
	p, ok := knownProfiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	p.MinObservations = minObservations
	if p.Heavy() {
		p.MinObservations = heavyMinObservations
	}
	return p, nil
}

// DefaultProfiles returns the six profiles in run order with the default
// convergence thresholds (30 evaluations, 10 for gravity profiles).
func DefaultProfiles() []Profile {
	profiles := make([]Profile, 0, len(DefaultProfileOrder))
	for _, name := range DefaultProfileOrder {
		p, _ := LookupProfile(name, DefaultMinObservations, DefaultHeavyMinObservations)
		profiles = append(profiles, p)
	}
	return profiles
}
