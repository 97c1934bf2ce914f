package engine

import (
	"math"

	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/geom"
)

const (
	bisectMaxIter  = 48
	bisectRelWidth = 1e-12
)

type checkpoint struct {
	mode Mode
	t    float64
}

func (e *Engine) snapshot() checkpoint { return checkpoint{mode: e.mode, t: e.t} }
func (e *Engine) restore(c checkpoint) { e.mode, e.t = c.mode, c.t }

// integrate advances the current mode by dt through the numerical
// integrator. Time rides in the flat buffer with derivative 1.
func (e *Engine) integrate(dt float64) {
	switch m := e.mode.(type) {
	case Track:
		x := e.integ.Step(trackSystem{e}, m.flat(e.t), e.t, dt)
		e.mode, e.t = trackFromFlat(x)
	case Free:
		x := e.integ.Step(freeSystem{e}, m.flat(e.t), e.t, dt)
		e.mode, e.t = freeFromFlat(x)
	}
}

// Advance integrates one full step, then applies the discrete machinery in
// order: parameter normalization and the stability test in Track mode, the
// containment tests in Free mode with checkpoint/rollback and bisection to
// locate a contact instant. Mode transitions happen here and in resolve,
// never inside the derivative evaluators.
func (e *Engine) Advance(dt float64) error {
	t0 := e.t
	before := e.snapshot()
	e.integrate(dt)

	switch m := e.mode.(type) {
	case Track:
		m.P = geom.Clamp(e.path, m.P)
		e.mode = m

		free, left, ok := e.checkTrackStability(m)
		if !ok {
			e.restore(before)
			return &dynamo.Fault{
				Time:     e.t,
				Interval: [2]float64{t0, t0 + dt},
				Wrapped:  dynamo.ErrTrigDomain,
			}
		}
		if left {
			e.trackRef = m.P
			e.mode = free
			e.departures++
			e.syncJump(IdxMode, IdxX, IdxY, IdxVX, IdxVY,
				IdxKinetic, IdxPotential, IdxTotal)
			return nil
		}

	case Free:
		if e.outOfDomain(m) {
			e.mode = e.terminalClamp(m)
			e.syncJump(IdxX, IdxVX, IdxVY, IdxKinetic, IdxPotential, IdxTotal)
			return nil
		}
		if e.detectPenetration(m) {
			e.restore(before)
			return e.resolveWithinStep(t0, dt)
		}
	}

	e.syncContinuous()
	return nil
}

// resolveWithinStep bisects [0, dt] for the largest collision-free sub-step,
// applies the collision response exactly once at that instant, and
// integrates the remainder of the step in the resulting mode.
func (e *Engine) resolveWithinStep(t0, dt float64) error {
	before := e.snapshot()

	lo, hi := 0.0, dt
	for i := 0; i < bisectMaxIter && hi-lo > dt*bisectRelWidth; i++ {
		mid := 0.5 * (lo + hi)
		e.restore(before)
		e.integrate(mid)
		if e.detectPenetration(e.mode.(Free)) {
			hi = mid
		} else {
			lo = mid
		}
	}
	if math.IsNaN(lo) || hi-lo > dt*bisectRelWidth {
		e.restore(before)
		return &dynamo.Fault{
			Time:     t0,
			Interval: [2]float64{t0, t0 + dt},
			Wrapped:  dynamo.ErrBisectionDiverged,
		}
	}

	// advance to the last collision-free instant and resolve there
	e.restore(before)
	e.integrate(lo)
	contact := e.mode.(Free)

	newMode, col := e.resolve(contact, e.t)
	e.lastCollision = col
	e.mode = newMode

	switch nm := newMode.(type) {
	case Track:
		e.relatches++
		e.trackRef = nm.P
		e.syncJump(IdxMode, IdxP, IdxV, IdxVX, IdxVY,
			IdxKinetic, IdxPotential, IdxTotal)
	case Free:
		e.bounces++
		// keep the re-latch seed at the contact point so the next
		// containment search starts where the body actually is
		e.trackRef = col.PEstimate
		e.syncJump(IdxVX, IdxVY, IdxKinetic, IdxPotential, IdxTotal)
	}

	if remaining := dt - lo; remaining > 0 {
		e.integrate(remaining)
		if m, isTrack := e.mode.(Track); isTrack {
			m.P = geom.Clamp(e.path, m.P)
			e.mode = m
		}
		e.syncContinuous()
	}
	return nil
}
