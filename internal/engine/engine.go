// Package engine implements the hybrid track-constrained / free-flight
// dynamics core: a point mass rides a curve under gravity, damping and an
// optional spring, departs the curve when it cannot supply the required
// centripetal acceleration, flies ballistically, and re-attaches through an
// impulse-based collision response.
package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rollersim/internal/body"
	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/geom"
	"github.com/san-kum/rollersim/internal/state"
)

// Params are the physical constants of the simulation. Mass must be
// positive; that is a precondition of the dynamics, not a runtime check.
type Params struct {
	Mass        float64
	Gravity     float64
	Damping     float64
	Restitution float64 // e in [0,1]: fraction of normal velocity retained on impact
	Stickiness  float64 // s in (0,1]: re-latch threshold on normal/total velocity ratio
}

func DefaultParams() Params {
	return Params{
		Mass:        1.0,
		Gravity:     9.8,
		Damping:     0.0,
		Restitution: 0.8,
		Stickiness:  0.5,
	}
}

type EnergyInfo struct {
	Potential float64
	Kinetic   float64
	Total     float64
}

type Engine struct {
	path   geom.Path
	spring *body.Spring
	par    Params
	integ  dynamo.Integrator

	mode Mode
	t    float64
	sv   *state.Vector

	// trackRef seeds the nearest-point search during free flight; written
	// only on mode transitions and collision resolution, never read by the
	// derivative evaluators.
	trackRef float64

	lowestY      float64
	energyOffset float64

	lastCollision *Collision
	departures    int
	bounces       int
	relatches     int

	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

// New builds an engine over a path with the given parameters and integrator.
func New(path geom.Path, par Params, integ dynamo.Integrator) (*Engine, error) {
	if par.Restitution < 0 || par.Restitution > 1 {
		return nil, fmt.Errorf("%w: restitution %f", dynamo.ErrParameterBounds, par.Restitution)
	}
	if par.Stickiness <= 0 || par.Stickiness > 1 {
		return nil, fmt.Errorf("%w: stickiness %f", dynamo.ErrParameterBounds, par.Stickiness)
	}
	e := &Engine{
		path:    path,
		par:     par,
		integ:   integ,
		sv:      state.New(VarNames...),
		lowestY: geom.Lowest(path, 512),
	}
	e.mode = Track{}
	e.syncContinuous()
	return e, nil
}

// AttachSpring connects a spring between the body and a fixed anchor.
func (e *Engine) AttachSpring(s *body.Spring) { e.spring = s }

// Start places the body on the curve at the point nearest the given
// location, at rest, and resets time and counters.
func (e *Engine) Start(x, y float64) {
	p, _ := e.path.NearestPoint(x, y, 0)
	e.mode = Track{P: p, V: 0}
	e.t = 0
	e.trackRef = p
	e.lastCollision = nil
	e.departures, e.bounces, e.relatches = 0, 0, 0
	e.syncJump(IdxTime, IdxMode, IdxP, IdxV, IdxX, IdxY, IdxVX, IdxVY,
		IdxKinetic, IdxPotential, IdxTotal)
}

// Launch places the body in free flight at (x, y) with the given velocity,
// seeding the re-latch search from the nearest curve point.
func (e *Engine) Launch(x, y, vx, vy float64) {
	p, _ := e.path.NearestPoint(x, y, 0)
	e.mode = Free{X: x, Y: y, VX: vx, VY: vy}
	e.t = 0
	e.trackRef = p
	e.lastCollision = nil
	e.departures, e.bounces, e.relatches = 0, 0, 0
	e.syncJump(IdxTime, IdxMode, IdxP, IdxV, IdxX, IdxY, IdxVX, IdxVY,
		IdxKinetic, IdxPotential, IdxTotal)
}

func (e *Engine) Mode() Mode           { return e.mode }
func (e *Engine) Time() float64        { return e.t }
func (e *Engine) Params() Params       { return e.par }
func (e *Engine) Path() geom.Path      { return e.path }
func (e *Engine) Spring() *body.Spring { return e.spring }

// StateVector is the observer surface: named variables with computed flags
// and change-sequence counters.
func (e *Engine) StateVector() *state.Vector { return e.sv }

func (e *Engine) LastCollision() *Collision { return e.lastCollision }
func (e *Engine) Departures() int           { return e.departures }
func (e *Engine) Bounces() int              { return e.bounces }
func (e *Engine) Relatches() int            { return e.relatches }

func (e *Engine) AddMetric(m dynamo.Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

// SetEnergyOffset shifts the reported potential energy for display
// calibration; it never feeds back into the dynamics.
func (e *Engine) SetEnergyOffset(off float64) { e.energyOffset = off }

// Position returns the body's 2D position regardless of mode.
func (e *Engine) Position() geom.Vec2 {
	switch m := e.mode.(type) {
	case Track:
		return e.path.PositionAt(m.P)
	case Free:
		return geom.Vec2{X: m.X, Y: m.Y}
	}
	return geom.Vec2{}
}

// Velocity returns the body's 2D velocity regardless of mode.
func (e *Engine) Velocity() geom.Vec2 {
	switch m := e.mode.(type) {
	case Track:
		return tangentUnit(e.path.SlopeAt(m.P)).Scale(m.V)
	case Free:
		return geom.Vec2{X: m.VX, Y: m.VY}
	}
	return geom.Vec2{}
}

// EnergyInfo reports energies with potential measured from the curve's
// lowest point plus the display offset.
func (e *Engine) EnergyInfo() EnergyInfo {
	pos := e.Position()
	vel := e.Velocity()
	ke := 0.5 * e.par.Mass * vel.Dot(vel)
	pe := e.par.Mass*e.par.Gravity*(pos.Y-e.lowestY) + e.energyOffset
	if e.spring != nil {
		pe += e.spring.PotentialEnergy(pos)
	}
	return EnergyInfo{Potential: pe, Kinetic: ke, Total: pe + ke}
}

// row assembles the observer-surface values for the current state.
func (e *Engine) row() []float64 {
	vals := make([]float64, numVars)
	pos := e.Position()
	vel := e.Velocity()
	en := e.EnergyInfo()

	vals[IdxTime] = e.t
	switch m := e.mode.(type) {
	case Track:
		vals[IdxMode] = modeTrackFlag
		vals[IdxP] = m.P
		vals[IdxV] = m.V
	case Free:
		vals[IdxMode] = modeFreeFlag
		vals[IdxP] = e.trackRef
		vals[IdxV] = vel.Len()
	}
	vals[IdxX] = pos.X
	vals[IdxY] = pos.Y
	vals[IdxVX] = vel.X
	vals[IdxVY] = vel.Y
	vals[IdxKinetic] = en.Kinetic
	vals[IdxPotential] = en.Potential
	vals[IdxTotal] = en.Total
	return vals
}

// syncContinuous publishes the state after an ordinary accepted step.
func (e *Engine) syncContinuous() {
	e.sv.SetValues(e.row(), true)
	switch e.mode.(type) {
	case Track:
		e.sv.MarkComputed(IdxX, IdxY, IdxVX, IdxVY, IdxKinetic, IdxPotential, IdxTotal)
	case Free:
		e.sv.MarkComputed(IdxP, IdxV, IdxKinetic, IdxPotential, IdxTotal)
	}
}

// syncJump publishes the state after a discontinuity, bumping the sequence
// counters of the affected variables even when their values are unchanged.
func (e *Engine) syncJump(affected ...int) {
	e.syncContinuous()
	e.sv.BumpSeq(affected...)
}

// Run drives the engine for a full configured duration, in the shape of a
// standard simulation loop: validate, reset metrics, observe each tick,
// collect rows and faults, summarize energy drift.
func (e *Engine) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	result.States = append(result.States, e.row())
	result.Times = append(result.Times, e.t)
	initialEnergy := e.EnergyInfo().Total

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		row := dynamo.State(e.row())
		for _, m := range e.metrics {
			m.Observe(row, e.t)
		}
		for _, obs := range e.observers {
			obs.OnStep(row, e.t)
		}

		if err := e.Advance(cfg.Dt); err != nil {
			result.Faults = append(result.Faults, err)
			break
		}

		committed := dynamo.State(e.row())
		if cfg.ValidateState && !committed.IsValid() {
			result.Faults = append(result.Faults,
				dynamo.SimError{Time: e.t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		result.StepsTaken++
		result.States = append(result.States, committed)
		result.Times = append(result.Times, e.t)
	}

	finalEnergy := e.EnergyInfo().Total
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
