package engine

import (
	"math"

	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/geom"
)

// The derivative evaluators are pure functions of the flat state buffer and
// the read-only geometry and parameters. They never touch e.mode, e.t or any
// other mutable engine field: multi-stage integrators feed them trial states
// that are never committed.

type trackSystem struct{ e *Engine }

func (s trackSystem) Dim() int { return trackDim }

func (s trackSystem) Derive(x dynamo.State, t float64) dynamo.State {
	return s.e.trackDerive(x)
}

type freeSystem struct{ e *Engine }

func (s freeSystem) Dim() int { return freeDim }

func (s freeSystem) Derive(x dynamo.State, t float64) dynamo.State {
	return s.e.freeDerive(x)
}

// finiteSlope reports whether k is a usable tangent slope. Inf and NaN both
// mean the tangent is vertical as far as the dynamics are concerned.
func finiteSlope(k float64) bool {
	return !math.IsInf(k, 0) && !math.IsNaN(k)
}

// tangentUnit is the unit tangent pointing in the direction of increasing
// parameter. A non-finite slope means a vertical tangent; the guard
// substitutes a direction-signed unit vector instead of propagating NaN.
func tangentUnit(sl geom.Slope) geom.Vec2 {
	if !finiteSlope(sl.K) {
		vy := sl.Dir
		if sl.K < 0 {
			vy = -vy
		}
		return geom.Vec2{X: 0, Y: vy}
	}
	sq := math.Sqrt(1 + sl.K*sl.K)
	return geom.Vec2{X: sl.Dir / sq, Y: sl.Dir * sl.K / sq}
}

// trackDerive: p' = v, v' = -g*sin(theta) - (b/m)*v + F_tangent/m, t' = 1,
// with theta the (direction-signed) slope angle at p.
func (e *Engine) trackDerive(x dynamo.State) dynamo.State {
	p, v := x[0], x[1]
	sl := e.path.SlopeAt(p)
	tu := tangentUnit(sl)

	// tu.Y is dir * sin(theta)
	vdot := -e.par.Gravity*tu.Y - (e.par.Damping/e.par.Mass)*v

	if e.spring != nil {
		pos := e.path.PositionAt(p)
		vel := tu.Scale(v)
		f := e.spring.ForceOn(pos, vel)
		vdot += f.Dot(tu) / e.par.Mass
	}

	return dynamo.State{v, vdot, 1}
}

// freeDerive: plain 2D Newtonian flight under gravity, damping and the
// optional spring.
func (e *Engine) freeDerive(x dynamo.State) dynamo.State {
	vx, vy := x[2], x[3]

	fx := -e.par.Damping * vx
	fy := -e.par.Damping * vy
	if e.spring != nil {
		f := e.spring.ForceOn(geom.Vec2{X: x[0], Y: x[1]}, geom.Vec2{X: vx, Y: vy})
		fx += f.X
		fy += f.Y
	}

	return dynamo.State{vx, vy, fx / e.par.Mass, -e.par.Gravity + fy/e.par.Mass, 1}
}
