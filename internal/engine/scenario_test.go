package engine

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/geom"
)

// A small-amplitude release in the valley y = 0.5 x^2 oscillates like a
// harmonic oscillator with omega^2 = 2*a*g = 9.8, period 2.0071 s.
func TestValleyOscillationPeriod(t *testing.T) {
	e := newTestEngine(t, geom.NewValley(0.5, 20), DefaultParams())
	e.Start(0.05, 0.00125)

	dt := 0.0005
	var crossings []float64
	prevX := e.Position().X
	prevT := e.Time()

	for e.Time() < 45 && len(crossings) < 21 {
		if err := e.Advance(dt); err != nil {
			t.Fatalf("advance: %v", err)
		}
		x, now := e.Position().X, e.Time()
		if prevX < 0 && x >= 0 {
			// linear interpolation of the upward zero crossing
			frac := -prevX / (x - prevX)
			crossings = append(crossings, prevT+frac*(now-prevT))
		}
		prevX, prevT = x, now
	}

	if len(crossings) < 21 {
		t.Fatalf("only %d upward crossings in 45s", len(crossings))
	}
	period := (crossings[20] - crossings[0]) / 20
	want := 2 * math.Pi / math.Sqrt(9.8)
	if math.Abs(period-want)/want > 0.01 {
		t.Errorf("period %f, want %f within 1%%", period, want)
	}

	if e.Departures() != 0 || e.Bounces() != 0 {
		t.Errorf("a valley oscillation never leaves the track: %d departures, %d bounces",
			e.Departures(), e.Bounces())
	}
}

func TestValleyTurningPoints(t *testing.T) {
	e := newTestEngine(t, geom.NewValley(0.5, 20), DefaultParams())
	e.Start(0.1, 0.005)

	minX, maxX := math.Inf(1), math.Inf(-1)
	for e.Time() < 10 {
		if err := e.Advance(0.001); err != nil {
			t.Fatalf("advance: %v", err)
		}
		x := e.Position().X
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
	}

	// without damping the swing is symmetric about the bottom
	if math.Abs(maxX-0.1) > 0.002 {
		t.Errorf("right turning point %f, want 0.1", maxX)
	}
	if math.Abs(minX+0.1) > 0.002 {
		t.Errorf("left turning point %f, want -0.1", minX)
	}
}

func TestRunEnergyDrift(t *testing.T) {
	e := newTestEngine(t, geom.NewValley(0.5, 20), DefaultParams())
	e.Start(1, 0.5)

	res, err := e.Run(context.Background(), dynamo.Config{
		Dt: 0.001, Duration: 10, ValidateState: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Faults) != 0 {
		t.Fatalf("faults during an undamped valley run: %v", res.Faults)
	}
	if res.EnergyDrift > 1e-6 {
		t.Errorf("energy drift %g exceeds 1e-6 over 10s at dt=1ms", res.EnergyDrift)
	}
	if res.StepsTaken != 10000 {
		t.Errorf("expected 10000 steps, got %d", res.StepsTaken)
	}
}

// The reported velocity must be the time derivative of the reported position;
// a trapezoid integral of Velocity over a valley swing has to reproduce the
// displacement the Position accessor shows.
func TestVelocityIntegratesToPosition(t *testing.T) {
	e := newTestEngine(t, geom.NewValley(0.5, 20), DefaultParams())
	e.Start(1, 0.5)

	dt := 0.001
	start := e.Position()
	sum := geom.Vec2{}
	prev := e.Velocity()
	for e.Time() < 2 {
		if err := e.Advance(dt); err != nil {
			t.Fatalf("advance: %v", err)
		}
		v := e.Velocity()
		sum.X += 0.5 * dt * (prev.X + v.X)
		sum.Y += 0.5 * dt * (prev.Y + v.Y)
		prev = v
	}

	end := e.Position()
	if math.Abs(start.X+sum.X-end.X) > 1e-4 {
		t.Errorf("integrated x displacement %g, position moved %g", sum.X, end.X-start.X)
	}
	if math.Abs(start.Y+sum.Y-end.Y) > 1e-4 {
		t.Errorf("integrated y displacement %g, position moved %g", sum.Y, end.Y-start.Y)
	}
}

// A fast pass over a sine crest departs, flies, lands on the downhill slope
// about 3.4 units further along and keeps going. The whole hybrid cycle in
// one scenario.
func TestCrestFlythrough(t *testing.T) {
	par := DefaultParams()
	par.Stickiness = 1.0 // always re-latch on contact
	e := newTestEngine(t, geom.NewSine(2, 0.5, 30), par)
	e.Start(0, 2)
	e.mode = Track{P: e.mode.(Track).P, V: 5}

	sawFree := false
	for e.Time() < 3 {
		if err := e.Advance(0.001); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if _, ok := e.Mode().(Free); ok {
			sawFree = true
		}
	}

	if e.Departures() == 0 {
		t.Error("expected a crest departure at this speed")
	}
	if !sawFree {
		t.Error("expected a free-flight phase")
	}
	if e.Relatches() == 0 {
		t.Error("expected the body to land back on the slope")
	}
	if m, ok := e.Mode().(Track); ok && m.V <= 0 {
		t.Errorf("after landing the body keeps moving rightward, got v=%f", m.V)
	}
}
