package config

import (
	"sort"

	"github.com/san-kum/dynachem/internal/constants"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/physics"
	"github.com/san-kum/dynachem/internal/sim"
)

var Presets = map[string]func() *Config{
	"hydrogen":      func() *Config { return hydrogen(false) },
	"fixed_nucleus": func() *Config { return hydrogen(true) },
	"proton_pair":   protonPair,
	"drag":          drag,
}

func base() *Config {
	return &Config{
		Dt:          sim.DefaultDt,
		Substeps:    sim.DefaultSubsteps,
		Frames:      DefaultFrames,
		RecordEvery: DefaultRecordEvery,
		Spring:      physics.DefaultSpringConfig(),
	}
}

// hydrogen puts an electron on a circular orbit of one ångström. With a free
// nucleus the proton gets the opposite momentum so the centre of mass rests.
func hydrogen(pinned bool) *Config {
	r := constants.Angstrom
	v := physics.CircularOrbitSpeed(particle.Electron.Charge, particle.Proton.Charge, particle.Electron.Mass, r)

	var recoil float64
	if !pinned {
		recoil = -v * particle.Electron.Mass / particle.Proton.Mass
	}

	cfg := base()
	cfg.Particles = []ParticleConfig{
		{ID: 1, Species: "proton", Velocity: [3]float64{0, recoil, 0}, Pinned: pinned},
		{ID: 2, Species: "electron", Position: [3]float64{r, 0, 0}, Velocity: [3]float64{0, v, 0}},
	}
	return cfg
}

func protonPair() *Config {
	r := constants.Angstrom
	cfg := base()
	cfg.Dt = 1e-16
	cfg.Frames = 500
	cfg.Particles = []ParticleConfig{
		{ID: 1, Species: "proton", Position: [3]float64{-r, 0, 0}},
		{ID: 2, Species: "proton", Position: [3]float64{r, 0, 0}},
	}
	return cfg
}

// drag pulls the nucleus of a hydrogen atom sideways and lets it go. The
// spring is stiff enough that a one-ångström stretch reaches the force cap.
func drag() *Config {
	r := constants.Angstrom
	cfg := hydrogen(false)
	cfg.Frames = 600
	cfg.Spring = physics.SpringConfig{Stiffness: 1e3, Damping: 1e-13, MaxForce: 1e-7}
	cfg.Drag = []DragEvent{
		{Frame: 100, Action: ActionBegin, Particle: 1, Position: [3]float64{0, 0, r}},
		{Frame: 200, Action: ActionUpdate, Position: [3]float64{0, 0, 2 * r}},
		{Frame: 300, Action: ActionUpdate, Position: [3]float64{0, 0, 3 * r}},
		{Frame: 400, Action: ActionEnd},
	}
	return cfg
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
