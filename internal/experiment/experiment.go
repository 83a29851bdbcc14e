package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/dynachem/internal/config"
	"github.com/san-kum/dynachem/internal/sim"
)

// Experiment is a host for one configured run: it owns the particles, the
// driver and the drag script.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.System
	script    *Script
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	particles, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	s, err := sim.New(cfg.SimConfig(), particles)
	if err != nil {
		return nil, err
	}
	s.RecordEvery(cfg.RecordEvery)

	return &Experiment{
		cfg:       cfg,
		simulator: s,
		script:    NewScript(cfg.Script()),
	}, nil
}

// Setup installs metrics. Without explicit names the registry defaults are used.
func (e *Experiment) Setup(reg *Registry, names []string) error {
	var ms []sim.Metric
	if len(names) == 0 {
		ms = reg.DefaultMetrics(e.cfg, e.script)
	} else {
		var err error
		if ms, err = reg.Metrics(names, e.cfg, e.script); err != nil {
			return err
		}
	}
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

// Run advances Config.Frames frames from the current frame. A second call
// continues the same run: drag events are keyed by absolute frame, so the
// script resumes at the first event not yet applied.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Frames, e.script)
}

// GetSimulator returns the underlying driver for adding observers.
func (e *Experiment) GetSimulator() *sim.System {
	return e.simulator
}

func (e *Experiment) Script() *Script { return e.script }
