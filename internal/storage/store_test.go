package storage

import (
	"testing"

	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/engine"
)

func sampleResult() *dynamo.Result {
	n := len(engine.VarNames)
	rows := make([]dynamo.State, 3)
	for i := range rows {
		rows[i] = make(dynamo.State, n)
		rows[i][engine.IdxTime] = float64(i) * 0.01
		rows[i][engine.IdxY] = 5 - float64(i)
	}
	return &dynamo.Result{
		States:      rows,
		Times:       []float64{0, 0.01, 0.02},
		Metrics:     map[string]float64{"energy": 49.0},
		EnergyDrift: 1.5e-7,
		StepsTaken:  2,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	meta := RunMetadata{
		Curve:       "valley",
		Dt:          0.01,
		Duration:    0.02,
		Integrator:  "rk4",
		Restitution: 0.8,
		Stickiness:  0.5,
		Bounces:     1,
	}
	runID, err := s.Save(meta, sampleResult())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadMetadata(runID)
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if got.Curve != "valley" || got.Bounces != 1 {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if got.EnergyDrift != 1.5e-7 {
		t.Errorf("energy drift %g, want 1.5e-7", got.EnergyDrift)
	}
	if got.Metrics["energy"] != 49.0 {
		t.Errorf("metrics not preserved: %v", got.Metrics)
	}

	states, err := s.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("got %d rows, want 3", len(states))
	}
	if states[2][engine.IdxY] != 3 {
		t.Errorf("row values not preserved: %v", states[2])
	}
	if len(states[0]) != len(engine.VarNames) {
		t.Errorf("row width %d, want %d", len(states[0]), len(engine.VarNames))
	}
}

func TestList(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("list empty store: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}

	if _, err := s.Save(RunMetadata{Curve: "flat"}, sampleResult()); err != nil {
		t.Fatalf("save: %v", err)
	}
	runs, err = s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].Curve != "flat" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	s := New(t.TempDir() + "/nope")
	runs, err := s.List()
	if err != nil || runs != nil {
		t.Errorf("a missing base dir lists as empty, got %v, %v", runs, err)
	}
}

func TestLoadMissingRun(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.LoadMetadata("ghost"); err == nil {
		t.Error("missing run must error")
	}
	if _, err := s.LoadStates("ghost"); err == nil {
		t.Error("missing states must error")
	}
}
