package config

var Presets = map[string]*Config{
	"valley": {
		Curve: CurveConfig{Kind: "valley", A: 0.5, HalfWidth: 20},
		Dt:    0.001, Duration: 20.0,
		Mass: 1, Gravity: 9.8, Restitution: 0.8, Stickiness: 0.5,
		Start: StartConfig{X: 3, Y: 10},
	},
	"hill-launch": {
		Curve: CurveConfig{Kind: "hump", Height: 8, A: 0.25, HalfWidth: 20},
		Dt:    0.001, Duration: 10.0,
		Mass: 1, Gravity: 9.8, Restitution: 0.6, Stickiness: 0.5,
		Start: StartConfig{X: 0.5, Y: 8},
	},
	"bouncy": {
		Curve: CurveConfig{Kind: "flat", HalfWidth: 50},
		Dt:    0.001, Duration: 15.0,
		Mass: 1, Gravity: 9.8, Restitution: 0.9, Stickiness: 0.2,
		Start: StartConfig{X: 0, Y: 5, Airborne: true, VX: 1.5},
	},
	"sticky": {
		Curve: CurveConfig{Kind: "sine", Amplitude: 2, Frequency: 0.5, HalfWidth: 30},
		Dt:    0.001, Duration: 20.0,
		Mass: 1, Gravity: 9.8, Restitution: 0.4, Stickiness: 1.0,
		Start: StartConfig{X: 2, Y: 6, Airborne: true},
	},
	"loop": {
		Curve: CurveConfig{Kind: "loop", Radius: 5, HalfWidth: 0},
		Dt:    0.0005, Duration: 20.0,
		Mass: 1, Gravity: 9.8, Restitution: 0.7, Stickiness: 0.5,
		Start: StartConfig{X: 0, Y: 0},
	},
	"spring": {
		Curve: CurveConfig{Kind: "valley", A: 0.25, HalfWidth: 25},
		Dt:    0.001, Duration: 25.0,
		Mass: 1, Gravity: 9.8, Damping: 0.1, Restitution: 0.8, Stickiness: 0.5,
		Start:  StartConfig{X: 4, Y: 10},
		Spring: &SpringConfig{AnchorX: 0, AnchorY: 15, RestLength: 3, Stiffness: 6, Damping: 0.2},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	if out.Integrator == "" {
		out.Integrator = "rk4"
	}
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
