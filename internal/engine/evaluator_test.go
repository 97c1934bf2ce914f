package engine

import (
	"math"
	"testing"

	"github.com/san-kum/rollersim/internal/body"
	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/geom"
	"github.com/san-kum/rollersim/internal/integrators"
)

func newTestEngine(t *testing.T, path geom.Path, par Params) *Engine {
	t.Helper()
	e, err := New(path, par, integrators.NewRK4())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func TestTrackDeriveFlat(t *testing.T) {
	e := newTestEngine(t, geom.NewFlat(0, 50), Params{Mass: 1, Gravity: 9.8, Restitution: 0.5, Stickiness: 0.5})

	dx := e.trackDerive(dynamo.State{1.0, 2.0, 0})

	if dx[0] != 2.0 {
		t.Errorf("expected p' = v = 2, got %f", dx[0])
	}
	if math.Abs(dx[1]) > 1e-12 {
		t.Errorf("expected zero acceleration on a flat track, got %f", dx[1])
	}
	if dx[2] != 1.0 {
		t.Errorf("time derivative must be exactly 1, got %f", dx[2])
	}
}

func TestTrackDeriveIncline(t *testing.T) {
	// straight line y = x: slope angle 45 degrees everywhere
	line := geom.NewGraph(
		func(x float64) float64 { return x },
		func(x float64) float64 { return 1 },
		func(x float64) float64 { return 0 },
		-10, 10)
	e := newTestEngine(t, line, Params{Mass: 2, Gravity: 9.8, Restitution: 0.5, Stickiness: 0.5})

	dx := e.trackDerive(dynamo.State{0, 0, 0})

	expected := -9.8 / math.Sqrt2
	if math.Abs(dx[1]-expected) > 1e-9 {
		t.Errorf("expected acceleration %f, got %f", expected, dx[1])
	}
}

func TestTrackDeriveDamping(t *testing.T) {
	e := newTestEngine(t, geom.NewFlat(0, 50), Params{Mass: 2, Gravity: 9.8, Damping: 0.5, Restitution: 0.5, Stickiness: 0.5})

	dx := e.trackDerive(dynamo.State{0, 4.0, 0})

	// v' = -(b/m) v
	expected := -0.5 / 2.0 * 4.0
	if math.Abs(dx[1]-expected) > 1e-12 {
		t.Errorf("expected damped acceleration %f, got %f", expected, dx[1])
	}
}

func TestFreeDeriveGravity(t *testing.T) {
	e := newTestEngine(t, geom.NewValley(0.5, 20), Params{Mass: 1, Gravity: 9.8, Restitution: 0.5, Stickiness: 0.5})

	dx := e.freeDerive(dynamo.State{0, 5, 1.5, -2, 0})

	if dx[0] != 1.5 || dx[1] != -2 {
		t.Errorf("position derivatives must mirror velocity, got (%f, %f)", dx[0], dx[1])
	}
	if dx[2] != 0 {
		t.Errorf("expected zero horizontal acceleration, got %f", dx[2])
	}
	if math.Abs(dx[3]+9.8) > 1e-12 {
		t.Errorf("expected vertical acceleration -9.8, got %f", dx[3])
	}
	if dx[4] != 1.0 {
		t.Errorf("time derivative must be exactly 1, got %f", dx[4])
	}
}

func TestFreeDeriveSpring(t *testing.T) {
	e := newTestEngine(t, geom.NewValley(0.5, 20), Params{Mass: 1, Gravity: 9.8, Restitution: 0.5, Stickiness: 0.5})
	sp, err := body.NewSpring(geom.Vec2{X: 0, Y: 10}, 1, 4, 0)
	if err != nil {
		t.Fatalf("spring: %v", err)
	}
	e.AttachSpring(sp)

	// body straight below the anchor at distance 5: stretch 4, force 16 up
	dx := e.freeDerive(dynamo.State{0, 5, 0, 0, 0})

	if math.Abs(dx[2]) > 1e-12 {
		t.Errorf("expected zero horizontal spring force, got %f", dx[2])
	}
	expected := -9.8 + 16.0
	if math.Abs(dx[3]-expected) > 1e-9 {
		t.Errorf("expected vertical acceleration %f, got %f", expected, dx[3])
	}
}

func TestDerivePurity(t *testing.T) {
	e := newTestEngine(t, geom.NewValley(0.5, 20), Params{Mass: 1, Gravity: 9.8, Restitution: 0.5, Stickiness: 0.5})

	in := dynamo.State{1.2, -0.7, 3.0}
	first := e.trackDerive(in.Clone())

	// interleave trial evaluations at unrelated states
	e.trackDerive(dynamo.State{-4, 9, 0})
	e.freeDerive(dynamo.State{2, 2, 1, 1, 0})

	second := e.trackDerive(in.Clone())
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("derivative not pure: index %d changed %g -> %g", i, first[i], second[i])
		}
	}
}

func TestTangentUnitNonFiniteSlope(t *testing.T) {
	// an Inf slope and a NaN slope both stand for a vertical tangent; neither
	// may leak into the velocity direction
	for _, k := range []float64{math.Inf(1), math.NaN()} {
		tu := tangentUnit(geom.Slope{K: k, Dir: 1})
		if tu.X != 0 || tu.Y != 1 {
			t.Errorf("k=%v: tangent (%f, %f), want (0, 1)", k, tu.X, tu.Y)
		}
	}
}

func TestVerticalTangentGuard(t *testing.T) {
	loop := geom.NewLoop(5, 5)
	e := newTestEngine(t, loop, Params{Mass: 1, Gravity: 9.8, Restitution: 0.5, Stickiness: 0.5})

	pMin, pMax, _ := loop.Domain()
	quarter := pMin + (pMax-pMin)/4

	dx := e.trackDerive(dynamo.State{quarter, 3, 0})
	for i, v := range dx {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("derivative component %d is not finite at a vertical tangent: %f", i, v)
		}
	}
	// at the side of the loop gravity is purely tangential
	if math.Abs(dx[1]+9.8) > 1e-3 {
		t.Errorf("expected tangential deceleration -9.8 on the vertical section, got %f", dx[1])
	}
}
