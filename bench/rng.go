package bench

import (
	"hash/fnv"
	"math/rand"
)

// Named random streams. Spawn positions draw from the seed itself so a run's
// layout depends only on --seed.
const (
	SubsystemSpawn       = "spawn"
	SubsystemFrameJitter = "frame_jitter"
)

// Streams hands out one seeded *rand.Rand per name, so draws on one stream
// never shift another. Not safe for concurrent use.
type Streams struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewStreams creates the stream set for seed.
func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed, streams: make(map[string]*rand.Rand)}
}

// Stream returns the generator for name, creating it on first use.
func (s *Streams) Stream(name string) *rand.Rand {
	if rng, ok := s.streams[name]; ok {
		return rng
	}
	seed := s.seed
	if name != SubsystemSpawn {
		h := fnv.New64a()
		h.Write([]byte(name))
		seed ^= int64(h.Sum64())
	}
	rng := rand.New(rand.NewSource(seed))
	s.streams[name] = rng
	return rng
}
