// Package body holds the point mass and the optional spring acting on it.
package body

import "github.com/san-kum/rollersim/internal/geom"

// Body mirrors the simulated point mass for observers and force evaluation.
// Position and velocity are derived from the engine state each step; the
// struct is never the source of truth. Mass > 0 is a documented precondition
// of the dynamics, not a runtime check.
type Body struct {
	Mass float64
	Pos  geom.Vec2
	Vel  geom.Vec2
}
