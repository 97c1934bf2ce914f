package engine

import (
	"github.com/san-kum/rollersim/internal/geom"
)

// Collision is a diagnostic record of a contact event. It never feeds back
// into dynamics.
type Collision struct {
	Time      float64
	Pos       geom.Vec2
	PEstimate float64
	Impulse   float64
}

// detectPenetration reports whether a free-flight position has fallen
// beneath the curve.
func (e *Engine) detectPenetration(m Free) bool {
	return m.Y < e.path.YAt(m.X)
}

// outOfDomain reports whether the body left the horizontal extent of an
// open curve. Not a geometry collision: the caller applies a terminal clamp.
func (e *Engine) outOfDomain(m Free) bool {
	pMin, pMax, closed := e.path.Domain()
	if closed {
		return false
	}
	xa := e.path.PositionAt(pMin).X
	xb := e.path.PositionAt(pMax).X
	if xa > xb {
		xa, xb = xb, xa
	}
	return m.X < xa || m.X > xb
}

// terminalClamp pins the body back to the curve's x-range with zero
// velocity. A safety stop, not a physical bounce.
func (e *Engine) terminalClamp(m Free) Free {
	pMin, pMax, _ := e.path.Domain()
	xa := e.path.PositionAt(pMin).X
	xb := e.path.PositionAt(pMax).X
	if xa > xb {
		xa, xb = xb, xa
	}
	if m.X < xa {
		m.X = xa
	} else if m.X > xb {
		m.X = xb
	}
	m.VX, m.VY = 0, 0
	return m
}

// resolve computes the post-impact state at the contact instant: refine the
// nearest curve point, split velocity into tangential and normal parts,
// reflect the normal with restitution, and decide whether to re-latch onto
// the track.
func (e *Engine) resolve(m Free, t float64) (Mode, *Collision) {
	p, sl := e.path.NearestPoint(m.X, m.Y, e.trackRef)
	k := sl.K

	vel := geom.Vec2{X: m.VX, Y: m.VY}
	var tangential geom.Vec2
	if !finiteSlope(k) {
		tangential = geom.Vec2{X: 0, Y: vel.Y}
	} else {
		ct := (vel.X + k*vel.Y) / (1 + k*k)
		tangential = geom.Vec2{X: ct, Y: ct * k}
	}
	normal := vel.Sub(tangential)

	ec := e.par.Restitution
	reflected := tangential.Sub(normal.Scale(ec))

	col := &Collision{
		Time:      t,
		Pos:       geom.Vec2{X: m.X, Y: m.Y},
		PEstimate: p,
		Impulse:   normal.Len() * (1 + ec) * e.par.Mass,
	}

	residual := ec * normal.Len()
	total := reflected.Len()
	if total == 0 || residual/total < e.par.Stickiness {
		v := tangential.Len()
		if tangential.X < 0 {
			v = -v
		}
		return Track{P: p, V: v}, col
	}

	// stay airborne with the reflected velocity, lifted back above the curve
	if yc := e.path.YAt(m.X); m.Y < yc {
		m.Y = yc
	}
	return Free{X: m.X, Y: m.Y, VX: reflected.X, VY: reflected.Y}, col
}
