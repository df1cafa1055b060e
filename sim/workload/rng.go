package workload

import (
	"hash/fnv"
	"math/rand"
)

// RNG stream names used by Generate.
const (
	StreamArrival  = "arrival"
	StreamBurst    = "burst"
	StreamPriority = "priority"
)

// PartitionedRNG provides deterministic, isolated RNG instances per stream, so
// drawing priorities never shifts the arrival or burst sequences.
//
// Derivation: StreamArrival uses the seed directly; every other stream uses
// seed XOR fnv1a64(name).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:    seed,
		streams: make(map[string]*rand.Rand),
	}
}

// ForStream returns a deterministically-seeded RNG for the named stream.
// The same name always returns the same *rand.Rand instance (cached).
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}

	derivedSeed := p.seed
	if name != StreamArrival {
		derivedSeed = p.seed ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.streams[name] = rng
	return rng
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
