package workload

import (
	"math"
	"math/rand"
)

// ArrivalSampler generates inter-arrival gaps in ticks.
type ArrivalSampler interface {
	// SampleGap returns the next inter-arrival gap. Never negative.
	SampleGap(rng *rand.Rand) int64
}

// PoissonSampler generates exponentially-distributed gaps (CV=1).
type PoissonSampler struct {
	meanGap float64
}

func (s *PoissonSampler) SampleGap(rng *rand.Rand) int64 {
	return int64(math.Round(rng.ExpFloat64() * s.meanGap))
}

// ConstantSampler spaces arrivals evenly.
type ConstantSampler struct {
	gap int64
}

func (s *ConstantSampler) SampleGap(_ *rand.Rand) int64 {
	return s.gap
}

// GammaSampler generates Gamma-distributed gaps. CV > 1 produces bursty
// arrivals separated by long quiet periods, which is where SLEEP pays off.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // meanGap × CV²
}

func (s *GammaSampler) SampleGap(rng *rand.Rand) int64 {
	return int64(math.Round(gammaRand(rng, s.shape, s.scale)))
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// NewArrivalSampler creates a sampler for the named process.
// Valid names: "poisson" (default), "constant", "gamma".
func NewArrivalSampler(spec ArrivalSpec, meanGap float64) ArrivalSampler {
	switch spec.Process {
	case "constant":
		return &ConstantSampler{gap: int64(math.Round(meanGap))}
	case "gamma":
		cv := 2.0
		if spec.CV != nil {
			cv = *spec.CV
		}
		return &GammaSampler{shape: 1.0 / (cv * cv), scale: meanGap * cv * cv}
	default:
		return &PoissonSampler{meanGap: meanGap}
	}
}
