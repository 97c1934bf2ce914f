package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rollersim/internal/engine"
	"github.com/san-kum/rollersim/internal/geom"
	"github.com/san-kum/rollersim/internal/integrators"
)

// bouncesBeforeRelatch drops the body from 1m with a 1.5 m/s horizontal
// velocity onto a flat track and counts bounces until it latches on.
func bouncesBeforeRelatch(stickiness float64) int {
	par := engine.DefaultParams()
	par.Restitution = 0.5
	par.Stickiness = stickiness

	e, err := engine.New(geom.NewFlat(0, 50), par, integrators.NewRK4())
	Expect(err).NotTo(HaveOccurred())
	e.Launch(0, 1, 1.5, 0)

	for e.Relatches() == 0 && e.Time() < 3 {
		Expect(e.Advance(0.001)).To(Succeed())
	}
	Expect(e.Relatches()).To(Equal(1), "body never latched on")
	return e.Bounces()
}

var _ = Describe("stickiness", func() {
	// with e=0.5 the normal/total velocity ratio decays across successive
	// impacts as 0.83, 0.59, 0.35, 0.18, 0.09; the threshold picks the
	// impact at which the body stops bouncing
	DescribeTable("bounce count before latching",
		func(stickiness float64, bounces int) {
			Expect(bouncesBeforeRelatch(stickiness)).To(Equal(bounces))
		},
		Entry("very sticky latches on first contact", 0.9, 0),
		Entry("sticky latches after one bounce", 0.6, 1),
		Entry("moderate latches after two bounces", 0.35, 2),
		Entry("slippery latches after four bounces", 0.1, 4),
	)

	It("latches with the tangential speed, signed by direction", func() {
		par := engine.DefaultParams()
		par.Restitution = 0.5
		par.Stickiness = 0.9

		e, err := engine.New(geom.NewFlat(0, 50), par, integrators.NewRK4())
		Expect(err).NotTo(HaveOccurred())
		e.Launch(0, 1, -1.5, 0)

		for e.Relatches() == 0 && e.Time() < 3 {
			Expect(e.Advance(0.001)).To(Succeed())
		}
		m, ok := e.Mode().(engine.Track)
		Expect(ok).To(BeTrue())
		Expect(m.V).To(BeNumerically("~", -1.5, 1e-6))
	})

	It("rejects parameters outside their bounds", func() {
		par := engine.DefaultParams()
		par.Stickiness = 0
		_, err := engine.New(geom.NewFlat(0, 50), par, integrators.NewRK4())
		Expect(err).To(HaveOccurred())

		par = engine.DefaultParams()
		par.Restitution = 1.2
		_, err = engine.New(geom.NewFlat(0, 50), par, integrators.NewRK4())
		Expect(err).To(HaveOccurred())
	})
})
