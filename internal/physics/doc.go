// Package physics provides the force laws acting on particles.
//
// Both laws are stateless and depend only on constants and raw kinematic inputs:
//
//   - [CoulombForce]: inverse-square electrostatic force between two point charges
//   - [SpringForce]: damped, clamped virtual spring toward a drag anchor
//
// # Singularities
//
// The Coulomb law is undefined at zero separation. Rather than returning an
// infinite or NaN vector it fails with [dynamo.ErrSingularity]:
//
//	f, err := physics.CoulombForce(q1, q2, p1, p2)
//	if errors.Is(err, dynamo.ErrSingularity) {
//	    // coincident particles: a configuration problem, not a force
//	}
//
// Spring clamping at [SpringConfig.MaxForce] is a designed safety limit and is
// never reported as an error.
package physics
