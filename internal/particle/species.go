package particle

import (
	"fmt"

	"github.com/san-kum/dynachem/internal/constants"
	"github.com/san-kum/dynachem/internal/dynamo"
)

// Species tags a particle with its charge (C) and mass (kg). Position and
// velocity belong to the particle, not the species.
type Species struct {
	Name   string
	Charge float64
	Mass   float64
}

var (
	Proton   = Species{Name: "proton", Charge: constants.ElementaryCharge, Mass: constants.ProtonMass}
	Electron = Species{Name: "electron", Charge: -constants.ElementaryCharge, Mass: constants.ElectronMass}
)

// NewSpecies returns a custom species, rejecting non-positive mass.
func NewSpecies(name string, charge, mass float64) (Species, error) {
	s := Species{Name: name, Charge: charge, Mass: mass}
	if err := s.Validate(); err != nil {
		return Species{}, err
	}
	return s, nil
}

func (s Species) Validate() error {
	if !(s.Mass > 0) {
		return fmt.Errorf("species %q mass %g: %w", s.Name, s.Mass, dynamo.ErrInvalidMass)
	}
	return nil
}

func (s Species) String() string { return s.Name }

// Lookup resolves a built-in species by name.
func Lookup(name string) (Species, error) {
	switch name {
	case "proton", "p":
		return Proton, nil
	case "electron", "e":
		return Electron, nil
	default:
		return Species{}, fmt.Errorf("unknown species: %s", name)
	}
}
