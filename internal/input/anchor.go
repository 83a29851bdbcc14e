// Package input holds the drag anchor that couples a user pointer to one
// particle through the virtual spring.
//
// The anchor is a two-state machine:
//
//	Idle --Begin--> Dragging --End--> Idle
//	                Dragging --Update--> Dragging
//
// The host mutates it between frames; the driver only ever reads a [Snapshot].
package input

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/particle"
)

type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Anchor is the host-owned drag state. The zero value is Idle.
type Anchor struct {
	phase    Phase
	particle particle.ID
	position mgl64.Vec3
}

// Begin starts dragging particle id toward position. Beginning while already
// dragging retargets the anchor.
func (a *Anchor) Begin(position mgl64.Vec3, id particle.ID) {
	a.phase = Dragging
	a.particle = id
	a.position = position
}

// Update moves the anchor. It has no effect while Idle.
func (a *Anchor) Update(position mgl64.Vec3) {
	if a.phase != Dragging {
		return
	}
	a.position = position
}

// End releases the particle.
func (a *Anchor) End() {
	*a = Anchor{}
}

func (a *Anchor) Phase() Phase { return a.phase }

// Snapshot captures the anchor for one frame.
func (a *Anchor) Snapshot() Snapshot {
	if a.phase != Dragging {
		return Snapshot{}
	}
	return Snapshot{Active: true, Particle: a.particle, Position: a.position}
}

// Snapshot is the read-only view the driver consumes. Particle and Position
// are meaningful only while Active.
type Snapshot struct {
	Active   bool
	Particle particle.ID
	Position mgl64.Vec3
}

// Released is the snapshot of an Idle anchor.
var Released = Snapshot{}
