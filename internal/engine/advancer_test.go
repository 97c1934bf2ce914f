package engine

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/geom"
	"github.com/san-kum/rollersim/internal/integrators"
)

func TestElasticBounce(t *testing.T) {
	par := DefaultParams()
	par.Restitution = 1.0
	e := newTestEngine(t, geom.NewFlat(0, 10), par)
	e.Launch(0, 5, 0, 0)

	dt := 0.001
	for e.Bounces() == 0 {
		if err := e.Advance(dt); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if e.Time() > 2 {
			t.Fatal("no bounce within 2s of a 5m drop")
		}
	}

	// free fall from 5m meets the floor at sqrt(2*5/9.8)
	wantContact := math.Sqrt(2 * 5 / 9.8)
	col := e.LastCollision()
	if col == nil {
		t.Fatal("bounce recorded without a collision record")
	}
	if math.Abs(col.Time-wantContact) > 2*dt {
		t.Errorf("contact time %f, want %f", col.Time, wantContact)
	}
	wantImpulse := math.Sqrt(2*9.8*5) * 2 // |N|(1+e)m with e=1, m=1
	if math.Abs(col.Impulse-wantImpulse)/wantImpulse > 0.01 {
		t.Errorf("impulse %f, want %f", col.Impulse, wantImpulse)
	}

	// an elastic bounce returns to the drop height
	apex := 0.0
	for e.Time() < 2*wantContact {
		if err := e.Advance(dt); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if y := e.Position().Y; y > apex {
			apex = y
		}
	}
	if math.Abs(apex-5)/5 > 0.01 {
		t.Errorf("rebound apex %f, want 5 within 1%%", apex)
	}
}

func TestBounceRefreshesRelatchSeed(t *testing.T) {
	// a bounce with forward motion moves the contact point along the curve;
	// the re-latch seed must track it instead of staying at the launch point
	par := DefaultParams()
	par.Restitution = 0.8
	par.Stickiness = 0.1
	e := newTestEngine(t, geom.NewFlat(0, 10), par)
	e.Launch(0, 1, 1.5, 0)

	for e.Bounces() == 0 {
		if err := e.Advance(0.001); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if e.Time() > 2 {
			t.Fatal("no bounce within 2s of a 1m drop")
		}
	}

	col := e.LastCollision()
	if col == nil {
		t.Fatal("bounce recorded without a collision record")
	}
	if e.trackRef != col.PEstimate {
		t.Errorf("re-latch seed %f, want the contact estimate %f", e.trackRef, col.PEstimate)
	}
	// on a flat line the parameter equals x: contact at vx * sqrt(2h/g)
	wantX := 1.5 * math.Sqrt(2*1/9.8)
	if math.Abs(e.trackRef-wantX) > 0.01 {
		t.Errorf("re-latch seed %f, want the contact x %f", e.trackRef, wantX)
	}
}

func TestPlasticImpactRelatches(t *testing.T) {
	par := DefaultParams()
	par.Restitution = 0
	e := newTestEngine(t, geom.NewFlat(0, 10), par)
	e.Launch(0, 1, 0, 0)

	dt := 0.001
	for e.Relatches() == 0 {
		if err := e.Advance(dt); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if e.Time() > 1 {
			t.Fatal("no re-latch within 1s of a 1m drop")
		}
	}

	if e.Bounces() != 0 {
		t.Errorf("zero restitution must not bounce, got %d bounces", e.Bounces())
	}
	m, ok := e.Mode().(Track)
	if !ok {
		t.Fatalf("expected Track mode after re-latch, got %T", e.Mode())
	}
	if math.Abs(m.V) > 1e-9 {
		t.Errorf("a vertical plastic impact lands at rest, got v=%f", m.V)
	}
}

func TestOutOfDomainClamp(t *testing.T) {
	e := newTestEngine(t, geom.NewFlat(0, 5), DefaultParams())
	e.mode = Free{X: 4.9, Y: 2, VX: 20, VY: 0}

	if err := e.Advance(0.01); err != nil {
		t.Fatalf("advance: %v", err)
	}

	m, ok := e.Mode().(Free)
	if !ok {
		t.Fatalf("expected Free mode after terminal clamp, got %T", e.Mode())
	}
	if m.X != 5 {
		t.Errorf("X clamped to the domain edge 5, got %f", m.X)
	}
	if m.VX != 0 || m.VY != 0 {
		t.Errorf("terminal clamp zeroes velocity, got (%f, %f)", m.VX, m.VY)
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() *dynamo.Result {
		e := newTestEngine(t, geom.NewValley(0.5, 20), DefaultParams())
		e.Start(1.5, 2)
		res, err := e.Run(context.Background(), dynamo.Config{
			Dt: 0.002, Duration: 3, ValidateState: true,
		})
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res
	}

	a, b := run(), run()
	if len(a.States) != len(b.States) {
		t.Fatalf("step counts differ: %d vs %d", len(a.States), len(b.States))
	}
	for i := range a.States {
		for j := range a.States[i] {
			if a.States[i][j] != b.States[i][j] {
				t.Fatalf("step %d var %d differs: %g vs %g",
					i, j, a.States[i][j], b.States[i][j])
			}
		}
	}
}

func TestDampedEnergyDecay(t *testing.T) {
	par := DefaultParams()
	par.Damping = 0.5
	e := newTestEngine(t, geom.NewValley(0.5, 20), par)
	e.Start(2, 2)

	prev := e.EnergyInfo().Total
	initial := prev
	dt := 0.001
	for e.Time() < 5 {
		if err := e.Advance(dt); err != nil {
			t.Fatalf("advance: %v", err)
		}
		cur := e.EnergyInfo().Total
		if cur > prev+1e-9 {
			t.Fatalf("energy rose under damping at t=%f: %f -> %f", e.Time(), prev, cur)
		}
		prev = cur
	}
	if prev > 0.5*initial {
		t.Errorf("energy barely decayed: %f of initial %f", prev, initial)
	}
}

func TestSequenceBumpOnImpact(t *testing.T) {
	e := newTestEngine(t, geom.NewFlat(0, 10), DefaultParams())
	e.Launch(0, 1, 0, 0)

	sv := e.StateVector()
	before := sv.Seq(IdxVY)
	modeSeq := sv.Seq(IdxMode)

	dt := 0.001
	for e.Bounces() == 0 {
		if err := e.Advance(dt); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if e.Time() > 1 {
			t.Fatal("no bounce within 1s")
		}
	}

	if sv.Seq(IdxVY) <= before {
		t.Error("a bounce is a velocity discontinuity, VY sequence must advance")
	}
	if sv.Seq(IdxMode) != modeSeq {
		t.Error("a bounce stays in free flight, mode sequence must not advance")
	}
}

func TestDepartureTransition(t *testing.T) {
	e := newTestEngine(t, geom.NewHump(2, 0.25, 10), DefaultParams())
	e.Start(0, 2)
	e.mode = Track{P: 0, V: 5} // above the crest departure speed

	if err := e.Advance(0.001); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if e.Departures() != 1 {
		t.Fatalf("expected one departure, got %d", e.Departures())
	}
	m, ok := e.Mode().(Free)
	if !ok {
		t.Fatalf("expected Free mode after departure, got %T", e.Mode())
	}
	if m.VX <= 0 {
		t.Errorf("departure keeps the tangential velocity direction, got VX=%f", m.VX)
	}
}

func TestRK45AgreesWithRK4(t *testing.T) {
	runWith := func(integ dynamo.Integrator) float64 {
		e, err := New(geom.NewValley(0.5, 20), DefaultParams(), integ)
		if err != nil {
			t.Fatalf("engine: %v", err)
		}
		e.Start(1, 0.5)
		for e.Time() < 2 {
			if err := e.Advance(0.001); err != nil {
				t.Fatalf("advance: %v", err)
			}
		}
		return e.Position().X
	}

	x4 := runWith(integrators.NewRK4())
	x45 := runWith(integrators.NewRK45())
	if math.Abs(x4-x45) > 1e-6 {
		t.Errorf("integrators disagree: rk4 %f vs rk45 %f", x4, x45)
	}
}
