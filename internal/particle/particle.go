// Package particle defines the single particle representation used by the
// simulation. A particle carries its species; the species decides charge and mass.
package particle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/dynamo"
)

// ID identifies a particle for the lifetime of a run.
type ID uint64

type Particle struct {
	id      ID
	species Species
	pinned  bool

	position mgl64.Vec3 // m
	velocity mgl64.Vec3 // m/s
	force    mgl64.Vec3 // N, accumulated within a substep
}

var _ dynamo.Integrable = (*Particle)(nil)

// New creates a particle at rest or with the given initial velocity.
func New(id ID, species Species, position, velocity mgl64.Vec3) (*Particle, error) {
	if err := species.Validate(); err != nil {
		return nil, err
	}
	if !dynamo.IsFinite(position) || !dynamo.IsFinite(velocity) {
		return nil, fmt.Errorf("particle %d: %w", id, dynamo.ErrInvalidState)
	}
	return &Particle{
		id:       id,
		species:  species,
		position: position,
		velocity: velocity,
	}, nil
}

// Pin holds the particle in place: forces act on it but the driver never
// moves it. Used for a fixed nucleus. Pinning discards any velocity.
func (p *Particle) Pin() *Particle {
	p.pinned = true
	p.velocity = mgl64.Vec3{}
	return p
}

func (p *Particle) ID() ID               { return p.id }
func (p *Particle) Species() Species     { return p.species }
func (p *Particle) Charge() float64      { return p.species.Charge }
func (p *Particle) Pinned() bool         { return p.pinned }
func (p *Particle) Position() mgl64.Vec3 { return p.position }
func (p *Particle) Velocity() mgl64.Vec3 { return p.velocity }
func (p *Particle) Force() mgl64.Vec3    { return p.force }
func (p *Particle) Mass() float64        { return p.species.Mass }

func (p *Particle) SetPosition(pos mgl64.Vec3) { p.position = pos }
func (p *Particle) SetVelocity(vel mgl64.Vec3) { p.velocity = vel }

// ApplyForce adds f to the accumulated force.
func (p *Particle) ApplyForce(f mgl64.Vec3) { p.force = p.force.Add(f) }
func (p *Particle) ClearForce()             { p.force = mgl64.Vec3{} }

func (p *Particle) String() string {
	return fmt.Sprintf("%s#%d p=[%.4e %.4e %.4e] v=[%.4e %.4e %.4e]",
		p.species.Name, p.id,
		p.position[0], p.position[1], p.position[2],
		p.velocity[0], p.velocity[1], p.velocity[2])
}
