package sim

import (
	"github.com/san-kum/dynachem/internal/integrators"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/physics"
)

// KineticEnergy sums ½mv² over all particles.
func KineticEnergy(particles []*particle.Particle) float64 {
	ke := 0.0
	for _, p := range particles {
		ke += integrators.KineticEnergy(p)
	}
	return ke
}

// PotentialEnergy sums the Coulomb pair potential over all distinct pairs.
func PotentialEnergy(particles []*particle.Particle) (float64, error) {
	pe := 0.0
	for i := 0; i < len(particles); i++ {
		for j := i + 1; j < len(particles); j++ {
			r := particles[i].Position().Sub(particles[j].Position()).Len()
			u, err := physics.CoulombPotential(particles[i].Charge(), particles[j].Charge(), r)
			if err != nil {
				return 0, err
			}
			pe += u
		}
	}
	return pe, nil
}

// TotalEnergy is kinetic plus Coulomb potential energy. The spring is
// external work and is not included.
func TotalEnergy(particles []*particle.Particle) (float64, error) {
	pe, err := PotentialEnergy(particles)
	if err != nil {
		return 0, err
	}
	return KineticEnergy(particles) + pe, nil
}
