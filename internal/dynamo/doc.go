// Package dynamo provides the primitives shared by the simulation packages.
//
// The package defines:
//
//   - [Integrable]: the capability any particle representation exposes to an integrator
//   - domain errors ([ErrSingularity], [ErrInvalidMass], ...) and [SimulationError]
//   - [ParallelFor]: a chunked fan-out with a fixed work partition
//
// # Example
//
//	p, _ := particle.New(1, particle.Electron, mgl64.Vec3{constants.BohrRadius, 0, 0}, mgl64.Vec3{})
//	aOld := integrators.PositionStep(p, dt)
//	// recompute forces at the new position ...
//	integrators.VelocityStep(p, aOld, dt)
//
// # Thread Safety
//
// Nothing in this package holds state. Implementations of [Integrable] are
// NOT expected to be safe for concurrent mutation.
package dynamo
