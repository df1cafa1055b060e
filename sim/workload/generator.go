package workload

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GeneratorSpec configures a synthetic workload. Loaded from YAML via
// LoadGeneratorSpec or built from CLI flags.
type GeneratorSpec struct {
	Seed       int64       `yaml:"seed"`
	Count      int         `yaml:"count"`
	MeanGap    float64     `yaml:"mean_gap"` // mean ticks between arrivals
	Arrival    ArrivalSpec `yaml:"arrival"`
	BurstMin   int64       `yaml:"burst_min"`
	BurstMax   int64       `yaml:"burst_max"`
	Priorities int         `yaml:"priorities"` // priorities drawn from [0, Priorities); 0 = none
}

// ArrivalSpec configures the inter-arrival process.
type ArrivalSpec struct {
	Process string   `yaml:"process"` // "poisson", "constant" or "gamma"
	CV      *float64 `yaml:"cv,omitempty"`
}

var validArrivalProcesses = map[string]bool{"": true, "poisson": true, "constant": true, "gamma": true}

// Validate checks the spec's ranges.
func (s *GeneratorSpec) Validate() error {
	if s.Count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", s.Count)
	}
	if s.MeanGap < 0 {
		return fmt.Errorf("mean_gap must be non-negative, got %f", s.MeanGap)
	}
	if s.BurstMin < 1 {
		return fmt.Errorf("burst_min must be >= 1, got %d", s.BurstMin)
	}
	if s.BurstMax < s.BurstMin {
		return fmt.Errorf("burst_max (%d) must be >= burst_min (%d)", s.BurstMax, s.BurstMin)
	}
	if s.Priorities < 0 {
		return fmt.Errorf("priorities must be non-negative, got %d", s.Priorities)
	}
	if !validArrivalProcesses[s.Arrival.Process] {
		return fmt.Errorf("unknown arrival process %q", s.Arrival.Process)
	}
	if s.Arrival.CV != nil && *s.Arrival.CV <= 0 {
		return fmt.Errorf("arrival cv must be positive, got %f", *s.Arrival.CV)
	}
	return nil
}

// LoadGeneratorSpec reads a GeneratorSpec from YAML with strict field checking.
func LoadGeneratorSpec(path string) (*GeneratorSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading generator spec: %w", err)
	}
	var spec GeneratorSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing generator spec: %w", err)
	}
	return &spec, nil
}

// Generate creates a descriptor sequence from spec. Deterministic given the
// same spec and seed. Descriptors come out in arrival order.
func Generate(spec *GeneratorSpec) (Descriptors, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}

	rng := NewPartitionedRNG(spec.Seed)
	arrivalRNG := rng.ForStream(StreamArrival)
	burstRNG := rng.ForStream(StreamBurst)
	priorityRNG := rng.ForStream(StreamPriority)
	sampler := NewArrivalSampler(spec.Arrival, spec.MeanGap)

	descs := make(Descriptors, 0, spec.Count)
	var clock int64
	for i := 0; i < spec.Count; i++ {
		if i > 0 {
			clock += sampler.SampleGap(arrivalRNG)
		}
		d := Descriptor{
			Arrival: clock,
			Burst:   spec.BurstMin + burstRNG.Int63n(spec.BurstMax-spec.BurstMin+1),
		}
		if spec.Priorities > 0 {
			d.Priority = priorityRNG.Intn(spec.Priorities)
		}
		descs = append(descs, d)
	}
	return descs, nil
}
