package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/input"
	"github.com/san-kum/dynachem/internal/integrators"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/physics"
)

// parallelMinChunk is the smallest per-goroutine slice of the pairwise pass.
const parallelMinChunk = 2

// System is the substep driver. It owns no particles; the host passes them
// in and reads their updated state after every Step.
type System struct {
	cfg       Config
	particles []*particle.Particle
	index     map[particle.ID]int

	frame int
	time  float64

	// Snapshot buffers for the pairwise pass. Filled before any particle's
	// accumulator is touched.
	positions []mgl64.Vec3
	charges   []float64
	forces    []mgl64.Vec3
	errs      []error

	accel      []mgl64.Vec3 // a(t) from phase 1
	carried    []mgl64.Vec3 // F(t+dt) of the previous substep
	carryValid bool

	savedPos []mgl64.Vec3
	savedVel []mgl64.Vec3

	metrics     []Metric
	observers   []Observer
	recordEvery int
}

func New(cfg Config, particles []*particle.Particle) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := len(particles)
	index := make(map[particle.ID]int, n)
	for i, p := range particles {
		if p == nil {
			return nil, fmt.Errorf("particle %d is nil: %w", i, dynamo.ErrInvalidConfig)
		}
		if err := p.Species().Validate(); err != nil {
			return nil, err
		}
		if _, dup := index[p.ID()]; dup {
			return nil, fmt.Errorf("particle %d: %w", p.ID(), dynamo.ErrDuplicateParticle)
		}
		index[p.ID()] = i
	}

	return &System{
		cfg:       cfg,
		particles: particles,
		index:     index,
		positions: make([]mgl64.Vec3, n),
		charges:   make([]float64, n),
		forces:    make([]mgl64.Vec3, n),
		errs:      make([]error, n),
		accel:     make([]mgl64.Vec3, n),
		carried:   make([]mgl64.Vec3, n),
		savedPos:  make([]mgl64.Vec3, n),
		savedVel:  make([]mgl64.Vec3, n),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func (s *System) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *System) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// RecordEvery makes Run keep a state sample every n frames. Zero disables.
func (s *System) RecordEvery(n int) { s.recordEvery = n }

func (s *System) Metrics() []Metric               { return s.metrics }
func (s *System) Config() Config                  { return s.cfg }
func (s *System) Particles() []*particle.Particle { return s.particles }
func (s *System) Frame() int                      { return s.frame }
func (s *System) Time() float64                   { return s.time }

func (s *System) Particle(id particle.ID) (*particle.Particle, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.particles[i], true
}

// Energy returns the total kinetic plus Coulomb energy of the system.
func (s *System) Energy() (float64, error) {
	return TotalEnergy(s.particles)
}

// Advance steps one frame of the configured Dt.
func (s *System) Advance(anchor input.Snapshot) error {
	return s.Step(s.cfg.Dt, anchor)
}

// Step advances the system by dtFrame, split into Config.Substeps equal
// substeps. The anchor snapshot is held fixed for the whole frame.
//
// Each substep is all-or-nothing: on error every particle is returned to its
// state at the start of that substep and the error is returned as a
// *dynamo.SimulationError. Earlier substeps of the frame are kept.
func (s *System) Step(dtFrame float64, anchor input.Snapshot) error {
	if !(dtFrame > 0) || math.IsInf(dtFrame, 0) {
		return fmt.Errorf("frame dt must be positive, got %g: %w", dtFrame, dynamo.ErrInvalidConfig)
	}

	target, err := s.springTarget(anchor)
	if err != nil {
		return err
	}

	// The anchor may have moved since the last frame, so the carried force
	// is stale.
	s.carryValid = false

	dtSub := dtFrame / float64(s.cfg.Substeps)
	for k := 0; k < s.cfg.Substeps; k++ {
		if err := s.substep(dtSub, target, anchor.Position); err != nil {
			return &dynamo.SimulationError{Frame: s.frame, Substep: k, Time: s.time, Wrapped: err}
		}
		s.time += dtSub
	}

	s.frame++
	return nil
}

func (s *System) springTarget(anchor input.Snapshot) (int, error) {
	if !anchor.Active {
		return -1, nil
	}
	i, ok := s.index[anchor.Particle]
	if !ok {
		return -1, fmt.Errorf("anchor selects particle %d: %w", anchor.Particle, dynamo.ErrUnknownParticle)
	}
	return i, nil
}

func (s *System) substep(dt float64, target int, anchorPos mgl64.Vec3) error {
	s.save()

	if s.carryValid {
		for i, p := range s.particles {
			p.ApplyForce(s.carried[i])
		}
	} else if err := s.accumulate(target, anchorPos); err != nil {
		return err
	}

	// Phase 1 for every particle before any force is recomputed.
	for i, p := range s.particles {
		if p.Pinned() {
			s.accel[i] = mgl64.Vec3{}
			continue
		}
		s.accel[i] = integrators.PositionStep(p, dt)
	}
	s.clearForces()

	if err := s.accumulate(target, anchorPos); err != nil {
		s.rollback()
		return err
	}

	for i, p := range s.particles {
		// Spring damping in the carried force used v(t), so it lags half a step.
		s.carried[i] = p.Force()
		if p.Pinned() {
			continue
		}
		integrators.VelocityStep(p, s.accel[i], dt)
	}
	s.clearForces()

	for _, p := range s.particles {
		if !dynamo.IsFinite(p.Position()) || !dynamo.IsFinite(p.Velocity()) {
			s.rollback()
			return fmt.Errorf("particle %d: %w", p.ID(), dynamo.ErrInvalidState)
		}
	}

	s.carryValid = true
	return nil
}

// accumulate adds pairwise Coulomb forces and the spring force to the
// particles' accumulators. Positions and charges are copied out first and
// nothing is applied unless every pair succeeds.
func (s *System) accumulate(target int, anchorPos mgl64.Vec3) error {
	for i, p := range s.particles {
		s.positions[i] = p.Position()
		s.charges[i] = p.Charge()
	}

	n := len(s.particles)
	if s.cfg.Parallel {
		dynamo.ParallelFor(n, parallelMinChunk, s.pairwise)
	} else {
		s.pairwise(0, n)
	}

	for _, err := range s.errs {
		if err != nil {
			return err
		}
	}

	for i, p := range s.particles {
		p.ApplyForce(s.forces[i])
	}

	if target >= 0 {
		p := s.particles[target]
		p.ApplyForce(physics.SpringForce(s.positions[target], p.Velocity(), anchorPos, s.cfg.Spring))
	}
	return nil
}

// pairwise sums the Coulomb force on each particle in [start, end) over all
// others in index order. Each slot is written by exactly one caller, so the
// result does not depend on how the range is split.
func (s *System) pairwise(start, end int) {
	for i := start; i < end; i++ {
		var sum mgl64.Vec3
		s.errs[i] = nil

		for j := range s.positions {
			if j == i {
				continue
			}
			f, err := physics.CoulombForce(s.charges[i], s.charges[j], s.positions[i], s.positions[j])
			if err != nil {
				s.errs[i] = fmt.Errorf("particles %d and %d: %w", s.particles[i].ID(), s.particles[j].ID(), err)
				break
			}
			sum = sum.Add(f)
		}

		s.forces[i] = sum
	}
}

func (s *System) save() {
	for i, p := range s.particles {
		s.savedPos[i] = p.Position()
		s.savedVel[i] = p.Velocity()
	}
}

func (s *System) rollback() {
	for i, p := range s.particles {
		p.SetPosition(s.savedPos[i])
		p.SetVelocity(s.savedVel[i])
	}
	s.clearForces()
	s.carryValid = false
}

func (s *System) clearForces() {
	for _, p := range s.particles {
		p.ClearForce()
	}
}

// Run advances the system by frames frames of Config.Dt, asking src for the
// anchor before each one. A nil src leaves the anchor idle.
func (s *System) Run(ctx context.Context, frames int, src AnchorSource) (*Result, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d: %w", frames, dynamo.ErrInvalidConfig)
	}

	initialEnergy, err := s.Energy()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Samples: make([]Sample, 0),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.time, s.particles)
	}
	if s.recordEvery > 0 {
		result.Samples = append(result.Samples, s.sample(initialEnergy))
	}

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		anchor := input.Released
		if src != nil {
			anchor = src.AnchorAt(s.frame)
		}

		if err := s.Step(s.cfg.Dt, anchor); err != nil {
			s.collect(result)
			return result, err
		}
		result.FramesTaken++

		for _, m := range s.metrics {
			m.Observe(s.time, s.particles)
		}
		for _, obs := range s.observers {
			obs.OnFrame(s.frame, s.time, s.particles)
		}

		if s.recordEvery > 0 && result.FramesTaken%s.recordEvery == 0 {
			energy, err := s.Energy()
			if err != nil {
				s.collect(result)
				return result, err
			}
			result.Samples = append(result.Samples, s.sample(energy))
		}
	}

	finalEnergy, err := s.Energy()
	if err != nil {
		s.collect(result)
		return result, err
	}
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	s.collect(result)
	return result, nil
}

func (s *System) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *System) sample(energy float64) Sample {
	states := make([]ParticleState, len(s.particles))
	for i, p := range s.particles {
		states[i] = ParticleState{
			ID:       p.ID(),
			Species:  p.Species().Name,
			Position: p.Position(),
			Velocity: p.Velocity(),
		}
	}
	return Sample{Frame: s.frame, Time: s.time, Energy: energy, Particles: states}
}
