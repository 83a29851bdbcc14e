package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/constants"
	"github.com/san-kum/dynachem/internal/dynamo"
)

// CoulombForce returns the force on charge 1 (q1 at p1) due to charge 2 (q2 at p2),
// in newtons. It points from p2 toward p1 for like charges.
func CoulombForce(q1, q2 float64, p1, p2 mgl64.Vec3) (mgl64.Vec3, error) {
	d := p1.Sub(p2)
	r := d.Len()
	if r == 0 {
		return mgl64.Vec3{}, fmt.Errorf("coulomb force: %w", dynamo.ErrSingularity)
	}

	// q1*q2 first so that swapping the pair negates the result exactly.
	magnitude := constants.CoulombConstant * (q1 * q2) / (r * r)
	return d.Mul(magnitude / r), nil
}

// CoulombForceMagnitude returns k·q1·q2/r². Positive is repulsive, negative attractive.
func CoulombForceMagnitude(q1, q2, r float64) (float64, error) {
	if !(r > 0) {
		return 0, fmt.Errorf("coulomb force at r=%g: %w", r, dynamo.ErrSingularity)
	}
	return constants.CoulombConstant * (q1 * q2) / (r * r), nil
}

// CoulombPotential returns the pair potential energy k·q1·q2/r in joules.
func CoulombPotential(q1, q2, r float64) (float64, error) {
	if !(r > 0) {
		return 0, fmt.Errorf("coulomb potential at r=%g: %w", r, dynamo.ErrSingularity)
	}
	return constants.CoulombConstant * (q1 * q2) / r, nil
}

// CircularOrbitSpeed is the speed a body of the given mass and charge q1 needs
// to circle a fixed charge q2 at radius r. Returns 0 when the pair repels.
func CircularOrbitSpeed(q1, q2, mass, r float64) float64 {
	attraction := -constants.CoulombConstant * (q1 * q2) / (mass * r)
	if attraction <= 0 {
		return 0
	}
	return math.Sqrt(attraction)
}
