package engine

import "math"

const (
	// cosine values within trigClampTol of [-1,1] are ordinary rounding and
	// snap silently; up to trigFaultTol they still clamp but indicate the
	// geometry is drifting; beyond that the state is inconsistent and the
	// step is reported as a fault.
	trigClampTol = 1e-9
	trigFaultTol = 1e-6
)

func clampUnit(c float64) (float64, bool) {
	drift := math.Abs(c) - 1
	switch {
	case drift <= trigClampTol:
		if drift > 0 {
			c = math.Copysign(1, c)
		}
		return c, true
	case drift <= trigFaultTol:
		return math.Copysign(1, c), true
	default:
		return 0, false
	}
}

// checkTrackStability is the geometric stability test run once per accepted
// Track step. It compares the normal acceleration the curve environment can
// supply against the centripetal acceleration the current speed requires,
// and produces the Free state for a departure.
//
// Two canonical cases fix the sign convention: at the bottom of a valley
// (r > 0) gravity presses the body into the track and avail is negative, so
// departure needs an upward pull (a spring) to push avail above v^2/|r|; at
// the top of a hill (r < 0) gravity supplies at most g*cos(theta) of the
// centripetal demand and the body leaves as soon as v^2/|r| exceeds it.
func (e *Engine) checkTrackStability(m Track) (Free, bool, bool) {
	sl := e.path.SlopeAt(m.P)
	k, r := sl.K, sl.R

	var avail float64
	if finiteSlope(k) {
		avail = e.par.Gravity / math.Sqrt(1+k*k)
	}
	if r > 0 {
		avail = -avail
	}

	if e.spring != nil && finiteSlope(k) {
		pos := e.path.PositionAt(m.P)
		anchor := e.spring.Anchor

		// which side of the tangent line the anchor sits on
		intercept := pos.Y - k*pos.X
		side := math.Copysign(1, anchor.Y-(k*anchor.X+intercept))

		sv := e.spring.Vector(pos)
		svLen := sv.Len()
		if svLen > 0 {
			cosA, ok := clampUnit(sv.Dot(tangentUnit(sl)) / svLen)
			if !ok {
				return Free{}, false, false
			}
			sinA := math.Sqrt(1 - cosA*cosA)
			aSpring := sinA * e.spring.Stretch(pos) * e.spring.Stiffness / e.par.Mass
			if r < 0 {
				side = -side
			}
			avail += side * aSpring
		}
	}

	var required float64
	if r != 0 && !math.IsInf(r, 0) {
		required = math.Abs(m.V * m.V / r)
	}

	if (r < 0 && avail < required) || (r > 0 && avail > required) {
		pos := e.path.PositionAt(m.P)
		if yc := e.path.YAt(pos.X); pos.Y < yc {
			pos.Y = yc
		}
		vel := tangentUnit(sl).Scale(m.V)
		return Free{X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y}, true, true
	}
	return Free{}, false, true
}
