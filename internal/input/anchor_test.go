package input

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dynachem/internal/particle"
)

var _ = Describe("Anchor", func() {
	var anchor *Anchor

	BeforeEach(func() {
		anchor = &Anchor{}
	})

	It("starts idle with an inactive snapshot", func() {
		Expect(anchor.Phase()).To(Equal(Idle))
		Expect(anchor.Snapshot()).To(Equal(Released))
	})

	It("walks through the drag lifecycle", func() {
		anchor.Begin(mgl64.Vec3{1, 2, 3}, particle.ID(42))
		Expect(anchor.Phase()).To(Equal(Dragging))

		snap := anchor.Snapshot()
		Expect(snap.Active).To(BeTrue())
		Expect(snap.Particle).To(Equal(particle.ID(42)))
		Expect(snap.Position).To(Equal(mgl64.Vec3{1, 2, 3}))

		anchor.Update(mgl64.Vec3{4, 5, 6})
		Expect(anchor.Snapshot().Position).To(Equal(mgl64.Vec3{4, 5, 6}))

		anchor.End()
		Expect(anchor.Phase()).To(Equal(Idle))
		Expect(anchor.Snapshot()).To(Equal(Released))
	})

	It("ignores updates while idle", func() {
		anchor.Update(mgl64.Vec3{9, 9, 9})
		Expect(anchor.Snapshot()).To(Equal(Released))

		anchor.Begin(mgl64.Vec3{}, particle.ID(1))
		anchor.End()
		anchor.Update(mgl64.Vec3{9, 9, 9})
		Expect(anchor.Snapshot().Active).To(BeFalse())
	})

	It("retargets when a drag begins mid-drag", func() {
		anchor.Begin(mgl64.Vec3{1, 0, 0}, particle.ID(1))
		anchor.Begin(mgl64.Vec3{0, 1, 0}, particle.ID(2))

		snap := anchor.Snapshot()
		Expect(snap.Particle).To(Equal(particle.ID(2)))
		Expect(snap.Position).To(Equal(mgl64.Vec3{0, 1, 0}))
	})

	It("hands out snapshots that do not track later mutation", func() {
		anchor.Begin(mgl64.Vec3{1, 0, 0}, particle.ID(3))
		snap := anchor.Snapshot()
		anchor.Update(mgl64.Vec3{2, 0, 0})
		Expect(snap.Position).To(Equal(mgl64.Vec3{1, 0, 0}))
	})
})
