package metrics

import (
	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/particle"
)

// Stability is the fraction of observed frames in which every particle has a
// finite state and stays within radius of the origin.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t float64, particles []*particle.Particle) {
	s.samples++
	for _, p := range particles {
		pos, vel := p.Position(), p.Velocity()
		if !dynamo.IsFinite(pos) || !dynamo.IsFinite(vel) || pos.Len() > s.radius {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
