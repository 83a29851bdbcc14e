package integrators

import (
	"fmt"

	"github.com/san-kum/dynachem/internal/dynamo"
)

// EulerStep is forward Euler: both position and velocity use the state at t.
// It is not symplectic and drifts in energy; it serves as a baseline.
func EulerStep(p dynamo.Integrable, dt float64, force ForceFunc) {
	accel := force(p).Mul(1 / p.Mass())
	vel := p.Velocity()

	p.SetPosition(p.Position().Add(vel.Mul(dt)))
	p.SetVelocity(vel.Add(accel.Mul(dt)))
}

// Lookup resolves a scheme by name.
func Lookup(name string) (Scheme, error) {
	switch name {
	case "verlet":
		return FullStep, nil
	case "euler":
		return EulerStep, nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

// Names lists the registered schemes.
func Names() []string {
	return []string{"verlet", "euler"}
}
