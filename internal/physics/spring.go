package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/dynamo"
)

// SpringConfig configures the virtual spring between the drag anchor and the
// selected particle.
type SpringConfig struct {
	Stiffness float64 `yaml:"stiffness" json:"stiffness"` // N/m
	Damping   float64 `yaml:"damping" json:"damping"`     // N·s/m
	MaxForce  float64 `yaml:"max_force" json:"max_force"` // N
}

// DefaultSpringConfig is tuned for atomic-scale masses and distances.
func DefaultSpringConfig() SpringConfig {
	return SpringConfig{
		Stiffness: 1.0e-8,
		Damping:   1.0e-15,
		MaxForce:  1.0e-7,
	}
}

func (c SpringConfig) Validate() error {
	if c.MaxForce < 0 || math.IsNaN(c.MaxForce) {
		return fmt.Errorf("spring max_force must be non-negative, got %g: %w", c.MaxForce, dynamo.ErrInvalidConfig)
	}
	if c.Stiffness < 0 || math.IsNaN(c.Stiffness) {
		return fmt.Errorf("spring stiffness must be non-negative, got %g: %w", c.Stiffness, dynamo.ErrInvalidConfig)
	}
	if c.Damping < 0 || math.IsNaN(c.Damping) {
		return fmt.Errorf("spring damping must be non-negative, got %g: %w", c.Damping, dynamo.ErrInvalidConfig)
	}
	return nil
}

// SpringForce pulls a particle toward target with Hooke's law plus linear
// damping: F = k(target - pos) - c·vel. The result never exceeds MaxForce in
// magnitude; larger forces are rescaled along their own direction.
func SpringForce(pos, vel, target mgl64.Vec3, cfg SpringConfig) mgl64.Vec3 {
	f := target.Sub(pos).Mul(cfg.Stiffness).Sub(vel.Mul(cfg.Damping))

	magnitude := f.Len()
	if magnitude > cfg.MaxForce {
		f = f.Mul(cfg.MaxForce / magnitude)
	}
	return f
}

// SpringStretch is the distance between the particle and the anchor.
func SpringStretch(pos, target mgl64.Vec3) float64 {
	return target.Sub(pos).Len()
}

// Tension is a qualitative reading of how hard the spring pulls.
type Tension int

const (
	Relaxed Tension = iota
	Light
	Medium
	Heavy
)

func (t Tension) String() string {
	switch t {
	case Relaxed:
		return "relaxed"
	case Light:
		return "light"
	case Medium:
		return "medium"
	case Heavy:
		return "heavy"
	default:
		return fmt.Sprintf("tension(%d)", int(t))
	}
}

// ClassifyTension buckets stretch·stiffness/max_force at 0.1, 0.4 and 0.7.
// A zero MaxForce reads Heavy for any pulling stretch.
func ClassifyTension(stretch float64, cfg SpringConfig) Tension {
	force := stretch * cfg.Stiffness
	if cfg.MaxForce == 0 {
		if force == 0 {
			return Relaxed
		}
		return Heavy
	}

	ratio := force / cfg.MaxForce
	switch {
	case ratio < 0.1:
		return Relaxed
	case ratio < 0.4:
		return Light
	case ratio < 0.7:
		return Medium
	default:
		return Heavy
	}
}
