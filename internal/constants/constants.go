// Package constants holds the physical constants used by the simulation, in SI units.
//
// Values are the CODATA 2018 recommended values.
package constants

const (
	// ElementaryCharge is the charge carried by a proton, in coulombs.
	ElementaryCharge = 1.602176634e-19

	// VacuumPermittivity is the electric constant ε₀, in farads per meter.
	VacuumPermittivity = 8.8541878128e-12

	// CoulombConstant is k = 1/(4πε₀), in N·m²/C².
	CoulombConstant = 8.9875517923e9

	ElectronMass = 9.1093837015e-31  // kg
	ProtonMass   = 1.67262192369e-27 // kg

	// BohrRadius is the most probable electron-nucleus distance in hydrogen, in meters.
	BohrRadius = 5.29177210903e-11

	PlanckConstant = 6.62607015e-34  // J·s
	HBar           = 1.054571817e-34 // J·s, h/(2π)
	SpeedOfLight   = 299792458.0     // m/s

	// Angstrom is one ångström in meters.
	Angstrom = 1.0e-10
)
