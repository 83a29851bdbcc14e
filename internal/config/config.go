package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/physics"
	"github.com/san-kum/dynachem/internal/sim"
)

const (
	DefaultFrames      = 1000
	DefaultRecordEvery = 10
)

// Drag actions, applied to the anchor before the frame they are scheduled on.
const (
	ActionBegin  = "begin"
	ActionUpdate = "update"
	ActionEnd    = "end"
)

type Config struct {
	Dt          float64              `yaml:"dt"`
	Substeps    int                  `yaml:"substeps"`
	Frames      int                  `yaml:"frames"`
	Parallel    bool                 `yaml:"parallel"`
	RecordEvery int                  `yaml:"record_every"`
	Spring      physics.SpringConfig `yaml:"spring"`
	Particles   []ParticleConfig     `yaml:"particles"`
	Drag        []DragEvent          `yaml:"drag,omitempty"`
}

// ParticleConfig places one particle. Positions are in metres, velocities in
// metres per second.
type ParticleConfig struct {
	ID       uint64     `yaml:"id"`
	Species  string     `yaml:"species"`
	Position [3]float64 `yaml:"position,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
	Pinned   bool       `yaml:"pinned,omitempty"`
}

type DragEvent struct {
	Frame    int        `yaml:"frame"`
	Action   string     `yaml:"action"`
	Particle uint64     `yaml:"particle,omitempty"`
	Position [3]float64 `yaml:"position,flow,omitempty"`
}

func DefaultConfig() *Config {
	return hydrogen(false)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.SimConfig().Validate(); err != nil {
		return err
	}
	if c.Frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d: %w", c.Frames, dynamo.ErrInvalidConfig)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("record_every must not be negative: %w", dynamo.ErrInvalidConfig)
	}
	if len(c.Particles) == 0 {
		return fmt.Errorf("no particles: %w", dynamo.ErrInvalidConfig)
	}

	ids := make(map[uint64]bool, len(c.Particles))
	for _, pc := range c.Particles {
		if ids[pc.ID] {
			return fmt.Errorf("particle %d: %w", pc.ID, dynamo.ErrDuplicateParticle)
		}
		ids[pc.ID] = true
		if _, err := particle.Lookup(pc.Species); err != nil {
			return fmt.Errorf("particle %d: %w", pc.ID, err)
		}
	}

	for i, ev := range c.Drag {
		if ev.Frame < 0 {
			return fmt.Errorf("drag event %d: negative frame: %w", i, dynamo.ErrInvalidConfig)
		}
		switch ev.Action {
		case ActionBegin:
			if !ids[ev.Particle] {
				return fmt.Errorf("drag event %d selects particle %d: %w", i, ev.Particle, dynamo.ErrUnknownParticle)
			}
		case ActionUpdate, ActionEnd:
		default:
			return fmt.Errorf("drag event %d: unknown action %q: %w", i, ev.Action, dynamo.ErrInvalidConfig)
		}
	}
	return nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:       c.Dt,
		Substeps: c.Substeps,
		Spring:   c.Spring,
		Parallel: c.Parallel,
	}
}

// Build creates fresh particles in file order.
func (c *Config) Build() ([]*particle.Particle, error) {
	ps := make([]*particle.Particle, 0, len(c.Particles))
	for _, pc := range c.Particles {
		species, err := particle.Lookup(pc.Species)
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", pc.ID, err)
		}
		p, err := particle.New(particle.ID(pc.ID), species, mgl64.Vec3(pc.Position), mgl64.Vec3(pc.Velocity))
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", pc.ID, err)
		}
		if pc.Pinned {
			p.Pin()
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// Script returns the drag events ordered by frame. Events on the same frame
// keep their file order.
func (c *Config) Script() []DragEvent {
	events := make([]DragEvent, len(c.Drag))
	copy(events, c.Drag)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Frame < events[j].Frame })
	return events
}
