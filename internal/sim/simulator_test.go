package sim

import (
	"context"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dynachem/internal/constants"
	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/input"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/physics"
)

const angstrom = constants.Angstrom

func mustParticle(id particle.ID, s particle.Species, pos, vel mgl64.Vec3) *particle.Particle {
	p, err := particle.New(id, s, pos, vel)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func mustSystem(cfg Config, ps ...*particle.Particle) *System {
	s, err := New(cfg, ps)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func hydrogen(pinned bool) (*particle.Particle, *particle.Particle) {
	v := physics.CircularOrbitSpeed(particle.Electron.Charge, particle.Proton.Charge, particle.Electron.Mass, angstrom)
	proton := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{})
	if pinned {
		proton.Pin()
	}
	electron := mustParticle(2, particle.Electron, mgl64.Vec3{angstrom, 0, 0}, mgl64.Vec3{0, v, 0})
	return proton, electron
}

type counter struct{ frames int }

func (c *counter) OnFrame(frame int, t float64, ps []*particle.Particle) { c.frames++ }

type observations struct{ n int }

func (o *observations) Name() string                               { return "observations" }
func (o *observations) Observe(t float64, ps []*particle.Particle) { o.n++ }
func (o *observations) Value() float64                             { return float64(o.n) }
func (o *observations) Reset()                                     { o.n = 0 }

var _ = Describe("System", func() {
	Describe("construction", func() {
		DescribeTable("rejects invalid configuration",
			func(mutate func(*Config), target error) {
				cfg := DefaultConfig()
				mutate(&cfg)
				_, err := New(cfg, nil)
				Expect(errors.Is(err, target)).To(BeTrue(), "got %v", err)
			},
			Entry("zero substeps", func(c *Config) { c.Substeps = 0 }, dynamo.ErrInvalidConfig),
			Entry("negative substeps", func(c *Config) { c.Substeps = -3 }, dynamo.ErrInvalidConfig),
			Entry("zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrInvalidConfig),
			Entry("nan dt", func(c *Config) { c.Dt = math.NaN() }, dynamo.ErrInvalidConfig),
			Entry("negative max force", func(c *Config) { c.Spring.MaxForce = -1 }, dynamo.ErrInvalidConfig),
		)

		It("rejects duplicate particle ids", func() {
			a := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{})
			b := mustParticle(1, particle.Electron, mgl64.Vec3{angstrom, 0, 0}, mgl64.Vec3{})
			_, err := New(DefaultConfig(), []*particle.Particle{a, b})
			Expect(errors.Is(err, dynamo.ErrDuplicateParticle)).To(BeTrue())
		})

		It("looks particles up by id", func() {
			proton, electron := hydrogen(false)
			s := mustSystem(DefaultConfig(), proton, electron)

			p, ok := s.Particle(2)
			Expect(ok).To(BeTrue())
			Expect(p).To(BeIdenticalTo(electron))

			_, ok = s.Particle(99)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("stepping", func() {
		It("leaves every force accumulator empty after a frame", func() {
			proton, electron := hydrogen(false)
			s := mustSystem(DefaultConfig(), proton, electron)

			Expect(s.Advance(input.Released)).To(Succeed())
			Expect(proton.Force()).To(Equal(mgl64.Vec3{}))
			Expect(electron.Force()).To(Equal(mgl64.Vec3{}))
			Expect(s.Frame()).To(Equal(1))
			Expect(s.Time()).To(BeNumerically("~", DefaultDt, DefaultDt*1e-12))
		})

		It("moves a lone particle in a straight line", func() {
			p := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{1000, 0, 0})
			s := mustSystem(DefaultConfig(), p)

			Expect(s.Step(1e-15, input.Released)).To(Succeed())
			Expect(p.Position()[0]).To(BeNumerically("~", 1e-12, 1e-24))
			Expect(p.Velocity()).To(Equal(mgl64.Vec3{1000, 0, 0}))
		})

		It("pushes two protons apart while conserving momentum", func() {
			a := mustParticle(1, particle.Proton, mgl64.Vec3{-angstrom, 0, 0}, mgl64.Vec3{})
			b := mustParticle(2, particle.Proton, mgl64.Vec3{angstrom, 0, 0}, mgl64.Vec3{})
			cfg := DefaultConfig()
			cfg.Dt = 1e-16
			s := mustSystem(cfg, a, b)

			for i := 0; i < 100; i++ {
				Expect(s.Advance(input.Released)).To(Succeed())
			}

			separation := b.Position().Sub(a.Position()).Len()
			Expect(separation).To(BeNumerically(">", 2*angstrom))

			momentum := a.Velocity().Add(b.Velocity()).Mul(particle.Proton.Mass)
			each := a.Velocity().Len() * particle.Proton.Mass
			Expect(momentum.Len()).To(BeNumerically("<", each*1e-12))
		})

		It("keeps an electron on a circular orbit around a fixed nucleus", func() {
			proton, electron := hydrogen(true)
			cfg := DefaultConfig()
			cfg.Dt = 1e-18 // ten substeps of 1e-19 s
			s := mustSystem(cfg, proton, electron)

			e0, err := s.Energy()
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 40; i++ {
				Expect(s.Advance(input.Released)).To(Succeed())
			}

			e1, err := s.Energy()
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Abs(e1-e0) / math.Abs(e0)).To(BeNumerically("<", 0.01))
			Expect(proton.Position()).To(Equal(mgl64.Vec3{}))

			radius := electron.Position().Len()
			Expect(math.Abs(radius-angstrom) / angstrom).To(BeNumerically("<", 0.05))
		})

		It("conserves energy when both bodies are free", func() {
			proton, electron := hydrogen(false)
			cfg := DefaultConfig()
			cfg.Dt = 1e-18
			s := mustSystem(cfg, proton, electron)

			result, err := s.Run(context.Background(), 40, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.FramesTaken).To(Equal(40))
			Expect(result.EnergyDrift).To(BeNumerically("<", 0.01))
		})

		It("matches one substep per frame at the same substep size", func() {
			build := func(substeps int, dt float64) (*System, []*particle.Particle) {
				ps := []*particle.Particle{
					mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{}),
					mustParticle(2, particle.Electron, mgl64.Vec3{angstrom, 0, 0}, mgl64.Vec3{0, 1e6, 0}),
					mustParticle(3, particle.Proton, mgl64.Vec3{0, 3 * angstrom, 0}, mgl64.Vec3{}),
				}
				cfg := DefaultConfig()
				cfg.Substeps = substeps
				cfg.Dt = dt
				return mustSystem(cfg, ps...), ps
			}

			coarse, a := build(10, 1e-17)
			fine, b := build(1, 1e-18)

			for i := 0; i < 5; i++ {
				Expect(coarse.Advance(input.Released)).To(Succeed())
			}
			for i := 0; i < 50; i++ {
				Expect(fine.Advance(input.Released)).To(Succeed())
			}

			for i := range a {
				Expect(a[i].Position().ApproxEqualThreshold(b[i].Position(), 1e-22)).To(BeTrue())
				Expect(a[i].Velocity().ApproxEqualThreshold(b[i].Velocity(), 1e-6)).To(BeTrue())
			}
		})

		It("produces identical results with the parallel pairwise pass", func() {
			build := func(parallel bool) []*particle.Particle {
				ps := make([]*particle.Particle, 0, 6)
				for i := 0; i < 6; i++ {
					angle := float64(i) * math.Pi / 3
					pos := mgl64.Vec3{math.Cos(angle), math.Sin(angle), 0.1 * float64(i)}.Mul(2 * angstrom)
					ps = append(ps, mustParticle(particle.ID(i+1), particle.Proton, pos, mgl64.Vec3{}))
				}
				cfg := DefaultConfig()
				cfg.Parallel = parallel
				s := mustSystem(cfg, ps...)
				for f := 0; f < 20; f++ {
					Expect(s.Advance(input.Released)).To(Succeed())
				}
				return ps
			}

			serial := build(false)
			parallel := build(true)
			for i := range serial {
				Expect(parallel[i].Position()).To(Equal(serial[i].Position()))
				Expect(parallel[i].Velocity()).To(Equal(serial[i].Velocity()))
			}
		})

		It("rejects a non-positive frame dt", func() {
			proton, electron := hydrogen(false)
			s := mustSystem(DefaultConfig(), proton, electron)

			err := s.Step(0, input.Released)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
			Expect(s.Frame()).To(Equal(0))
		})
	})

	Describe("singularities", func() {
		It("fails without touching state when particles coincide", func() {
			pos := mgl64.Vec3{angstrom, 0, 0}
			a := mustParticle(1, particle.Proton, pos, mgl64.Vec3{5, 0, 0})
			b := mustParticle(2, particle.Electron, pos, mgl64.Vec3{})
			s := mustSystem(DefaultConfig(), a, b)

			err := s.Advance(input.Released)
			Expect(errors.Is(err, dynamo.ErrSingularity)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Substep).To(Equal(0))

			Expect(a.Position()).To(Equal(pos))
			Expect(a.Velocity()).To(Equal(mgl64.Vec3{5, 0, 0}))
			Expect(a.Force()).To(Equal(mgl64.Vec3{}))
			Expect(b.Force()).To(Equal(mgl64.Vec3{}))
		})

		It("rolls back a substep whose new positions coincide", func() {
			neutral, err := particle.NewSpecies("neutral", 0, 1)
			Expect(err).NotTo(HaveOccurred())

			mover := mustParticle(1, neutral, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-10, 0, 0})
			wall := mustParticle(2, neutral, mgl64.Vec3{}, mgl64.Vec3{}).Pin()

			cfg := DefaultConfig()
			cfg.Substeps = 1
			s := mustSystem(cfg, mover, wall)

			err = s.Step(0.1, input.Released)
			Expect(errors.Is(err, dynamo.ErrSingularity)).To(BeTrue())
			Expect(mover.Position()).To(Equal(mgl64.Vec3{1, 0, 0}))
			Expect(mover.Velocity()).To(Equal(mgl64.Vec3{-10, 0, 0}))
			Expect(mover.Force()).To(Equal(mgl64.Vec3{}))
		})
	})

	Describe("virtual spring", func() {
		It("pulls the selected particle toward the anchor", func() {
			p := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{})
			s := mustSystem(DefaultConfig(), p)

			var anchor input.Anchor
			anchor.Begin(mgl64.Vec3{angstrom, 0, 0}, p.ID())

			for i := 0; i < 10; i++ {
				Expect(s.Advance(anchor.Snapshot())).To(Succeed())
			}

			Expect(p.Position()[0]).To(BeNumerically(">", 0))
			Expect(p.Velocity()[0]).To(BeNumerically(">", 0))
			Expect(p.Position()[1]).To(BeZero())
			Expect(p.Force()).To(Equal(mgl64.Vec3{}))
		})

		It("does nothing while the anchor is idle", func() {
			p := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{})
			s := mustSystem(DefaultConfig(), p)

			var anchor input.Anchor
			anchor.Begin(mgl64.Vec3{angstrom, 0, 0}, p.ID())
			anchor.End()

			Expect(s.Advance(anchor.Snapshot())).To(Succeed())
			Expect(p.Position()).To(Equal(mgl64.Vec3{}))
			Expect(p.Velocity()).To(Equal(mgl64.Vec3{}))
		})

		It("never exceeds the configured maximum force", func() {
			p := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{})
			cfg := DefaultConfig()
			cfg.Substeps = 1
			s := mustSystem(cfg, p)

			far := input.Snapshot{Active: true, Particle: p.ID(), Position: mgl64.Vec3{1, 0, 0}}
			dt := 1e-15
			Expect(s.Step(dt, far)).To(Succeed())

			maxAccel := cfg.Spring.MaxForce / particle.Proton.Mass
			Expect(p.Velocity().Len()).To(BeNumerically("<=", maxAccel*dt*(1+1e-12)))
		})

		It("carries damping evaluated at the velocity before the substep", func() {
			v0 := 1e3
			p := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{v0, 0, 0})
			cfg := DefaultConfig()
			cfg.Substeps = 1
			cfg.Spring = physics.SpringConfig{Stiffness: 0, Damping: 1e-20, MaxForce: 1}
			s := mustSystem(cfg, p)

			held := input.Snapshot{Active: true, Particle: p.ID(), Position: mgl64.Vec3{}}
			Expect(s.Step(1e-15, held)).To(Succeed())

			Expect(p.Velocity()[0]).To(BeNumerically("<", v0))
			Expect(s.carried[0][0]).To(BeNumerically("~", -cfg.Spring.Damping*v0, 1e-30))
			Expect(s.carried[0][1]).To(BeZero())
		})

		It("rejects an anchor on an unknown particle before mutating", func() {
			p := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{3, 0, 0})
			s := mustSystem(DefaultConfig(), p)

			ghost := input.Snapshot{Active: true, Particle: 77, Position: mgl64.Vec3{angstrom, 0, 0}}
			err := s.Advance(ghost)
			Expect(errors.Is(err, dynamo.ErrUnknownParticle)).To(BeTrue())
			Expect(p.Position()).To(Equal(mgl64.Vec3{}))
			Expect(s.Frame()).To(Equal(0))
		})
	})

	Describe("Run", func() {
		It("feeds metrics, observers and samples", func() {
			proton, electron := hydrogen(true)
			s := mustSystem(DefaultConfig(), proton, electron)

			obs := &counter{}
			metric := &observations{}
			s.AddObserver(obs)
			s.AddMetric(metric)
			s.RecordEvery(5)

			result, err := s.Run(context.Background(), 20, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.frames).To(Equal(20))
			Expect(result.Metrics).To(HaveKeyWithValue("observations", 21.0))
			Expect(result.Samples).To(HaveLen(5))
			Expect(result.Samples[4].Frame).To(Equal(20))
			Expect(result.Samples[0].Particles).To(HaveLen(2))
		})

		It("asks the anchor source before every frame", func() {
			p := mustParticle(1, particle.Proton, mgl64.Vec3{}, mgl64.Vec3{})
			s := mustSystem(DefaultConfig(), p)

			var seen []int
			src := AnchorFunc(func(frame int) input.Snapshot {
				seen = append(seen, frame)
				return input.Snapshot{Active: true, Particle: 1, Position: mgl64.Vec3{angstrom, 0, 0}}
			})

			_, err := s.Run(context.Background(), 3, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal([]int{0, 1, 2}))
			Expect(p.Position()[0]).To(BeNumerically(">", 0))
		})

		It("stops when the context is cancelled", func() {
			proton, electron := hydrogen(false)
			s := mustSystem(DefaultConfig(), proton, electron)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result, err := s.Run(ctx, 10, nil)
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.FramesTaken).To(BeZero())
		})

		It("rejects a non-positive frame count", func() {
			proton, electron := hydrogen(false)
			s := mustSystem(DefaultConfig(), proton, electron)

			_, err := s.Run(context.Background(), 0, nil)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})
	})

	Describe("Ensemble", func() {
		It("returns results in member order", func() {
			members := make([]Member, 0, 3)
			for i := 1; i <= 3; i++ {
				proton, electron := hydrogen(true)
				s := mustSystem(DefaultConfig(), proton, electron)
				members = append(members, Member{System: s, Frames: i * 2})
			}

			e := NewEnsemble(members...)
			e.SetLimit(2)
			results, err := e.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			for i, r := range results {
				Expect(r.FramesTaken).To(Equal((i + 1) * 2))
			}
		})

		It("surfaces a failing member", func() {
			pos := mgl64.Vec3{angstrom, 0, 0}
			a := mustParticle(1, particle.Proton, pos, mgl64.Vec3{})
			b := mustParticle(2, particle.Proton, pos, mgl64.Vec3{})

			_, err := NewEnsemble(Member{System: mustSystem(DefaultConfig(), a, b), Frames: 1}).Run(context.Background())
			Expect(errors.Is(err, dynamo.ErrSingularity)).To(BeTrue())
		})
	})
})
