// Package integrators advances particles through time.
//
// Velocity Verlet is split in two phases so that the caller can recompute
// forces at the new positions of every particle between them:
//
//	aOld := integrators.PositionStep(p, dt) // x(t+dt)
//	// accumulate F(t+dt) on p
//	integrators.VelocityStep(p, aOld, dt)   // v(t+dt)
package integrators

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/dynamo"
)

// PositionStep applies x(t+dt) = x(t) + v(t)·dt + ½·a(t)·dt² with a(t) taken
// from the particle's accumulated force, and returns a(t). The accumulated
// force is left in place.
func PositionStep(p dynamo.Integrable, dt float64) mgl64.Vec3 {
	accel := p.Force().Mul(1 / p.Mass())

	pos := p.Position().
		Add(p.Velocity().Mul(dt)).
		Add(accel.Mul(0.5 * dt * dt))
	p.SetPosition(pos)

	return accel
}

// VelocityStep applies v(t+dt) = v(t) + ½·(a(t) + a(t+dt))·dt, where a(t+dt)
// comes from the force accumulated at the new position.
func VelocityStep(p dynamo.Integrable, oldAccel mgl64.Vec3, dt float64) {
	newAccel := p.Force().Mul(1 / p.Mass())
	vel := p.Velocity().Add(oldAccel.Add(newAccel).Mul(0.5 * dt))
	p.SetVelocity(vel)
}

// ForceFunc returns the total force on p at its current state.
type ForceFunc func(p dynamo.Integrable) mgl64.Vec3

// Scheme advances a single particle by dt under force.
type Scheme func(p dynamo.Integrable, dt float64, force ForceFunc)

// FullStep performs one Velocity Verlet step on a lone particle, evaluating
// force before and after the position update. The accumulated force is not
// used. Only valid when the force does not depend on other particles that
// move in the same step.
func FullStep(p dynamo.Integrable, dt float64, force ForceFunc) {
	invMass := 1 / p.Mass()

	oldAccel := force(p).Mul(invMass)
	p.SetPosition(p.Position().
		Add(p.Velocity().Mul(dt)).
		Add(oldAccel.Mul(0.5 * dt * dt)))

	newAccel := force(p).Mul(invMass)
	p.SetVelocity(p.Velocity().Add(oldAccel.Add(newAccel).Mul(0.5 * dt)))
}

// KineticEnergy returns ½·m·|v|².
func KineticEnergy(p dynamo.Integrable) float64 {
	v := p.Velocity()
	return 0.5 * p.Mass() * v.Dot(v)
}
