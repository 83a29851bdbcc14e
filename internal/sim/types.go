package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/input"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/physics"
)

const (
	// DefaultDt is one visible frame of simulated time, in seconds.
	DefaultDt = 1.0e-17

	// DefaultSubsteps splits each frame for stability near close approaches.
	// It is an empirically tuned value, not derived from a stability bound;
	// see the sweep command for how drift responds to it.
	DefaultSubsteps = 10
)

type Config struct {
	Dt       float64
	Substeps int
	Spring   physics.SpringConfig

	// Parallel fans the pairwise force pass out across goroutines. Results
	// are identical to the serial pass.
	Parallel bool
}

func DefaultConfig() Config {
	return Config{
		Dt:       DefaultDt,
		Substeps: DefaultSubsteps,
		Spring:   physics.DefaultSpringConfig(),
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %g: %w", c.Dt, dynamo.ErrInvalidConfig)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("substeps must be at least 1, got %d: %w", c.Substeps, dynamo.ErrInvalidConfig)
	}
	return c.Spring.Validate()
}

// Metric accumulates a scalar over a run. Observe is called with the state
// at the start of the run and after every frame.
type Metric interface {
	Name() string
	Observe(t float64, particles []*particle.Particle)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(frame int, t float64, particles []*particle.Particle)
}

// AnchorSource supplies the anchor snapshot for a frame. It is consulted
// between frames, never during one.
type AnchorSource interface {
	AnchorAt(frame int) input.Snapshot
}

type AnchorFunc func(frame int) input.Snapshot

func (f AnchorFunc) AnchorAt(frame int) input.Snapshot { return f(frame) }

type ParticleState struct {
	ID       particle.ID `json:"id"`
	Species  string      `json:"species"`
	Position mgl64.Vec3  `json:"position"`
	Velocity mgl64.Vec3  `json:"velocity"`
}

type Sample struct {
	Frame     int             `json:"frame"`
	Time      float64         `json:"time"`
	Energy    float64         `json:"energy"`
	Particles []ParticleState `json:"particles"`
}

type Result struct {
	Samples     []Sample
	Metrics     map[string]float64
	FramesTaken int
	EnergyDrift float64
}
