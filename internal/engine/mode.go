package engine

import "github.com/san-kum/rollersim/internal/dynamo"

// Mode is the sealed sum of the two motion regimes. Exactly one variant is
// live at any instant; cross-mode field reads are unrepresentable.
type Mode interface {
	// flat encodes the integrated quantities plus trailing time into a
	// buffer for the numerical integrator.
	flat(t float64) dynamo.State
}

// Track is constrained motion along the curve: arc-length parameter and
// scalar track speed.
type Track struct {
	P float64
	V float64
}

// Free is unconstrained 2D flight.
type Free struct {
	X  float64
	Y  float64
	VX float64
	VY float64
}

const (
	trackDim = 3 // p, v, t
	freeDim  = 5 // x, y, vx, vy, t
)

func (m Track) flat(t float64) dynamo.State {
	return dynamo.State{m.P, m.V, t}
}

func (m Free) flat(t float64) dynamo.State {
	return dynamo.State{m.X, m.Y, m.VX, m.VY, t}
}

func trackFromFlat(x dynamo.State) (Track, float64) {
	return Track{P: x[0], V: x[1]}, x[2]
}

func freeFromFlat(x dynamo.State) (Free, float64) {
	return Free{X: x[0], Y: x[1], VX: x[2], VY: x[3]}, x[4]
}

// Observer-surface variable layout. Position/velocity variables not owned by
// the current mode are derived mirrors and flagged computed.
const (
	IdxTime = iota
	IdxMode
	IdxP
	IdxV
	IdxX
	IdxY
	IdxVX
	IdxVY
	IdxKinetic
	IdxPotential
	IdxTotal
	numVars
)

// VarNames lists the observer-surface variables in index order.
var VarNames = []string{
	"time", "mode", "track position", "track velocity",
	"x position", "y position", "x velocity", "y velocity",
	"kinetic energy", "potential energy", "total energy",
}

const (
	modeTrackFlag = 0.0
	modeFreeFlag  = 1.0
)
