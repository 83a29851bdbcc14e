package experiment

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/integrators"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/physics"
)

// Orbit describes an electron on a circular orbit around a fixed proton.
type Orbit struct {
	Radius float64
	Dt     float64
	Steps  int
}

type SchemeResult struct {
	Scheme      string
	EnergyDrift float64
	RadiusDrift float64
}

// CompareSchemes integrates the same orbit with each named scheme and reports
// the final relative energy and radius errors.
func CompareSchemes(orbit Orbit, names []string) ([]SchemeResult, error) {
	if !(orbit.Radius > 0) || !(orbit.Dt > 0) || orbit.Steps < 1 {
		return nil, fmt.Errorf("orbit %+v: %w", orbit, dynamo.ErrInvalidConfig)
	}

	results := make([]SchemeResult, 0, len(names))
	for _, name := range names {
		scheme, err := integrators.Lookup(name)
		if err != nil {
			return nil, err
		}
		res, err := integrateOrbit(orbit, scheme)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		res.Scheme = name
		results = append(results, res)
	}
	return results, nil
}

func integrateOrbit(orbit Orbit, scheme integrators.Scheme) (SchemeResult, error) {
	q := particle.Proton.Charge
	v := physics.CircularOrbitSpeed(particle.Electron.Charge, q, particle.Electron.Mass, orbit.Radius)

	e, err := particle.New(1, particle.Electron, mgl64.Vec3{orbit.Radius, 0, 0}, mgl64.Vec3{0, v, 0})
	if err != nil {
		return SchemeResult{}, err
	}

	var forceErr error
	force := func(p dynamo.Integrable) mgl64.Vec3 {
		f, err := physics.CoulombForce(particle.Electron.Charge, q, p.Position(), mgl64.Vec3{})
		if err != nil && forceErr == nil {
			forceErr = err
		}
		return f
	}

	energy := func() (float64, error) {
		u, err := physics.CoulombPotential(particle.Electron.Charge, q, e.Position().Len())
		if err != nil {
			return 0, err
		}
		return integrators.KineticEnergy(e) + u, nil
	}

	e0, err := energy()
	if err != nil {
		return SchemeResult{}, err
	}

	for i := 0; i < orbit.Steps; i++ {
		scheme(e, orbit.Dt, force)
		if forceErr != nil {
			return SchemeResult{}, forceErr
		}
		if !dynamo.IsFinite(e.Position()) || !dynamo.IsFinite(e.Velocity()) {
			return SchemeResult{}, fmt.Errorf("step %d: %w", i, dynamo.ErrInvalidState)
		}
	}

	e1, err := energy()
	if err != nil {
		return SchemeResult{}, err
	}

	return SchemeResult{
		EnergyDrift: math.Abs(e1-e0) / math.Abs(e0),
		RadiusDrift: math.Abs(e.Position().Len()-orbit.Radius) / orbit.Radius,
	}, nil
}
