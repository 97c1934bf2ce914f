package body

import (
	"fmt"

	"github.com/san-kum/rollersim/internal/geom"
)

// Spring connects the simulated body to a fixed anchor. The pairing with the
// body is fixed at construction, so force evaluation never has to check that
// a force belongs to the body it is applied to.
type Spring struct {
	Anchor     geom.Vec2
	RestLength float64
	Stiffness  float64
	Damping    float64
}

// NewSpring validates parameters at construction: stiffness, damping and
// rest length must be non-negative.
func NewSpring(anchor geom.Vec2, restLength, stiffness, damping float64) (*Spring, error) {
	if stiffness < 0 {
		return nil, fmt.Errorf("spring: negative stiffness %f", stiffness)
	}
	if damping < 0 {
		return nil, fmt.Errorf("spring: negative damping %f", damping)
	}
	if restLength < 0 {
		return nil, fmt.Errorf("spring: negative rest length %f", restLength)
	}
	return &Spring{Anchor: anchor, RestLength: restLength, Stiffness: stiffness, Damping: damping}, nil
}

// Vector is the anchor-to-body displacement.
func (s *Spring) Vector(pos geom.Vec2) geom.Vec2 {
	return pos.Sub(s.Anchor)
}

// Stretch is the signed extension beyond rest length.
func (s *Spring) Stretch(pos geom.Vec2) float64 {
	return s.Vector(pos).Len() - s.RestLength
}

// ForceOn returns the spring force acting on the body at pos moving with
// vel: a linear restoring term plus damping along the spring axis. A body
// exactly at the anchor gets no force (direction undefined).
func (s *Spring) ForceOn(pos, vel geom.Vec2) geom.Vec2 {
	d := s.Vector(pos)
	dist := d.Len()
	if dist == 0 {
		return geom.Vec2{}
	}
	unit := d.Scale(1 / dist)
	f := unit.Scale(-s.Stiffness * (dist - s.RestLength))
	if s.Damping > 0 {
		f = f.Sub(unit.Scale(s.Damping * vel.Dot(unit)))
	}
	return f
}

// PotentialEnergy of the current extension, 0.5*k*stretch^2.
func (s *Spring) PotentialEnergy(pos geom.Vec2) float64 {
	st := s.Stretch(pos)
	return 0.5 * s.Stiffness * st * st
}
