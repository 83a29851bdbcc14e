package experiment

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/config"
	"github.com/san-kum/dynachem/internal/input"
	"github.com/san-kum/dynachem/internal/particle"
)

// Script replays drag events onto an anchor. Events scheduled for frame n
// are applied before frame n is stepped. Frames only move forward, so the
// script keeps its position between runs of the same system; Reset rewinds
// it for a system restarted at frame 0.
type Script struct {
	events []config.DragEvent
	next   int
	anchor input.Anchor
}

// NewScript expects events ordered by frame, as config.Config.Script returns.
func NewScript(events []config.DragEvent) *Script {
	return &Script{events: events}
}

func (s *Script) AnchorAt(frame int) input.Snapshot {
	for s.next < len(s.events) && s.events[s.next].Frame <= frame {
		s.apply(s.events[s.next])
		s.next++
	}
	return s.anchor.Snapshot()
}

func (s *Script) apply(ev config.DragEvent) {
	pos := mgl64.Vec3(ev.Position)
	switch ev.Action {
	case config.ActionBegin:
		s.anchor.Begin(pos, particle.ID(ev.Particle))
	case config.ActionUpdate:
		s.anchor.Update(pos)
	case config.ActionEnd:
		s.anchor.End()
	}
}

// Reset releases the anchor and rewinds to the first event.
func (s *Script) Reset() {
	s.next = 0
	s.anchor.End()
}

// Current is the anchor as of the last AnchorAt call.
func (s *Script) Current() input.Snapshot { return s.anchor.Snapshot() }

// Done reports whether every event has been applied.
func (s *Script) Done() bool { return s.next == len(s.events) }
