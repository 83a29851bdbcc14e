package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dynachem/internal/config"
	"github.com/san-kum/dynachem/internal/constants"
	"github.com/san-kum/dynachem/internal/metrics"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/sim"
)

// stabilityScale bounds how far a particle may wander, relative to the
// initial extent of the system, before a frame counts as unstable.
const stabilityScale = 1e3

type metricFactory func(cfg *config.Config, script *Script) (sim.Metric, bool)

type Registry struct {
	metrics map[string]metricFactory
}

func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]metricFactory)}

	r.metrics["energy"] = func(*config.Config, *Script) (sim.Metric, bool) {
		return metrics.NewEnergy(), true
	}
	r.metrics["energy_drift"] = func(*config.Config, *Script) (sim.Metric, bool) {
		return metrics.NewEnergyDrift(), true
	}
	r.metrics["stability"] = func(cfg *config.Config, _ *Script) (sim.Metric, bool) {
		return metrics.NewStability(stabilityScale * extent(cfg)), true
	}
	r.metrics["separation_drift"] = func(cfg *config.Config, _ *Script) (sim.Metric, bool) {
		if len(cfg.Particles) < 2 {
			return nil, false
		}
		a, b := particle.ID(cfg.Particles[0].ID), particle.ID(cfg.Particles[1].ID)
		return metrics.NewSeparationDrift(a, b), true
	}
	r.metrics["spring_tension"] = func(cfg *config.Config, script *Script) (sim.Metric, bool) {
		if len(cfg.Drag) == 0 {
			return nil, false
		}
		return metrics.NewSpringTension(cfg.Spring, script.Current), true
	}

	return r
}

// Metrics builds the named metrics. Metrics that do not apply to cfg, such as
// spring tension without drag events, are skipped.
func (r *Registry) Metrics(names []string, cfg *config.Config, script *Script) ([]sim.Metric, error) {
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		fn, ok := r.metrics[name]
		if !ok {
			return nil, fmt.Errorf("unknown metric: %s", name)
		}
		if m, ok := fn(cfg, script); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(cfg *config.Config, script *Script) []sim.Metric {
	ms, _ := r.Metrics([]string{"energy_drift", "stability", "separation_drift", "spring_tension"}, cfg, script)
	return ms
}

func extent(cfg *config.Config) float64 {
	largest := constants.Angstrom
	for _, pc := range cfg.Particles {
		for _, x := range pc.Position {
			if x < 0 {
				x = -x
			}
			if x > largest {
				largest = x
			}
		}
	}
	return largest
}
