package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Integrable is what an integrator needs from a particle. All operations are
// total and mutations are visible immediately.
type Integrable interface {
	Position() mgl64.Vec3
	Velocity() mgl64.Vec3
	Force() mgl64.Vec3
	Mass() float64

	SetPosition(pos mgl64.Vec3)
	SetVelocity(vel mgl64.Vec3)
	ClearForce()
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
