package analysis

import (
	"fmt"

	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/sim"
)

func find(s sim.Sample, id particle.ID) (sim.ParticleState, bool) {
	for _, p := range s.Particles {
		if p.ID == id {
			return p, true
		}
	}
	return sim.ParticleState{}, false
}

// RelativeCoordinate returns axis component of pos(a) - pos(b) for every sample.
func RelativeCoordinate(samples []sim.Sample, a, b particle.ID, axis int) ([]float64, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("axis %d: %w", axis, dynamo.ErrInvalidConfig)
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		pa, okA := find(s, a)
		pb, okB := find(s, b)
		if !okA || !okB {
			return nil, fmt.Errorf("sample %d: %w", i, dynamo.ErrUnknownParticle)
		}
		out[i] = pa.Position.Sub(pb.Position)[axis]
	}
	return out, nil
}

// SeparationSeries returns |pos(a) - pos(b)| for every sample.
func SeparationSeries(samples []sim.Sample, a, b particle.ID) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		pa, okA := find(s, a)
		pb, okB := find(s, b)
		if !okA || !okB {
			return nil, fmt.Errorf("sample %d: %w", i, dynamo.ErrUnknownParticle)
		}
		out[i] = pa.Position.Sub(pb.Position).Len()
	}
	return out, nil
}

func EnergySeries(samples []sim.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Energy
	}
	return out
}
