package metrics

import (
	"math"

	"github.com/san-kum/dynachem/internal/input"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/physics"
	"github.com/san-kum/dynachem/internal/sim"
)

// SpringTension records the peak spring stretch seen while the anchor was
// active. The anchor func is read once per observation.
type SpringTension struct {
	name   string
	cfg    physics.SpringConfig
	anchor func() input.Snapshot
	peak   float64
	active int
}

func NewSpringTension(cfg physics.SpringConfig, anchor func() input.Snapshot) *SpringTension {
	return &SpringTension{name: "spring_tension", cfg: cfg, anchor: anchor}
}

func (s *SpringTension) Name() string { return s.name }

func (s *SpringTension) Observe(t float64, particles []*particle.Particle) {
	snap := s.anchor()
	if !snap.Active {
		return
	}
	for _, p := range particles {
		if p.ID() != snap.Particle {
			continue
		}
		s.peak = math.Max(s.peak, physics.SpringStretch(p.Position(), snap.Position))
		s.active++
		return
	}
}

// Value is the peak stretch in metres.
func (s *SpringTension) Value() float64 { return s.peak }

// Peak classifies the peak stretch.
func (s *SpringTension) Peak() physics.Tension {
	return physics.ClassifyTension(s.peak, s.cfg)
}

// ActiveFrames counts observations made while dragging.
func (s *SpringTension) ActiveFrames() int { return s.active }

func (s *SpringTension) Reset() {
	s.peak = 0
	s.active = 0
}

var (
	_ sim.Metric = (*Energy)(nil)
	_ sim.Metric = (*EnergyDrift)(nil)
	_ sim.Metric = (*Stability)(nil)
	_ sim.Metric = (*SeparationDrift)(nil)
	_ sim.Metric = (*SpringTension)(nil)
)
