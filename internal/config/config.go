package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rollersim/internal/body"
	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/engine"
	"github.com/san-kum/rollersim/internal/geom"
	"github.com/san-kum/rollersim/internal/integrators"
)

const (
	DefaultDt          = 0.001
	DefaultDuration    = 10.0
	DefaultGravity     = 9.8
	DefaultMass        = 1.0
	DefaultRestitution = 0.8
	DefaultStickiness  = 0.5
	DefaultHalfWidth   = 20.0
)

type Config struct {
	Curve       CurveConfig   `yaml:"curve"`
	Integrator  string        `yaml:"integrator"`
	Dt          float64       `yaml:"dt"`
	Duration    float64       `yaml:"duration"`
	Seed        int64         `yaml:"seed"`
	Mass        float64       `yaml:"mass"`
	Gravity     float64       `yaml:"gravity"`
	Damping     float64       `yaml:"damping"`
	Restitution float64       `yaml:"restitution"`
	Stickiness  float64       `yaml:"stickiness"`
	Start       StartConfig   `yaml:"start"`
	Spring      *SpringConfig `yaml:"spring,omitempty"`
}

type CurveConfig struct {
	Kind      string  `yaml:"kind"` // valley, hump, sine, flat, loop
	A         float64 `yaml:"a"`
	Height    float64 `yaml:"height"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
	Radius    float64 `yaml:"radius"`
	HalfWidth float64 `yaml:"half_width"`
}

type StartConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	// Airborne drops the body in free flight from (X, Y) instead of
	// latching it onto the curve.
	Airborne bool    `yaml:"airborne"`
	VX       float64 `yaml:"vx"`
	VY       float64 `yaml:"vy"`
}

type SpringConfig struct {
	AnchorX    float64 `yaml:"anchor_x"`
	AnchorY    float64 `yaml:"anchor_y"`
	RestLength float64 `yaml:"rest_length"`
	Stiffness  float64 `yaml:"stiffness"`
	Damping    float64 `yaml:"damping"`
}

func DefaultConfig() *Config {
	return &Config{
		Curve:       CurveConfig{Kind: "valley", A: 0.5, HalfWidth: DefaultHalfWidth},
		Integrator:  "rk4",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Mass:        DefaultMass,
		Gravity:     DefaultGravity,
		Restitution: DefaultRestitution,
		Stickiness:  DefaultStickiness,
		Start:       StartConfig{X: 3, Y: 10},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildPath constructs the configured curve geometry.
func (c *Config) BuildPath() (geom.Path, error) {
	cc := c.Curve
	hw := cc.HalfWidth
	if hw <= 0 {
		hw = DefaultHalfWidth
	}
	switch cc.Kind {
	case "valley", "":
		a := cc.A
		if a <= 0 {
			a = 0.5
		}
		return geom.NewValley(a, hw), nil
	case "hump":
		a := cc.A
		if a <= 0 {
			a = 0.5
		}
		return geom.NewHump(cc.Height, a, hw), nil
	case "sine":
		amp, freq := cc.Amplitude, cc.Frequency
		if amp == 0 {
			amp = 2
		}
		if freq == 0 {
			freq = 0.5
		}
		return geom.NewSine(amp, freq, hw), nil
	case "flat":
		return geom.NewFlat(cc.Height, hw), nil
	case "loop":
		r := cc.Radius
		if r <= 0 {
			r = 5
		}
		return geom.NewLoop(r, r), nil
	default:
		return nil, fmt.Errorf("unknown curve kind: %q", cc.Kind)
	}
}

// BuildIntegrator maps the configured name to an integrator.
func (c *Config) BuildIntegrator() (dynamo.Integrator, error) {
	switch c.Integrator {
	case "rk4", "":
		return integrators.NewRK4(), nil
	case "euler":
		return integrators.NewEuler(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %q", c.Integrator)
	}
}

// BuildEngine assembles the engine, spring and initial state.
func (c *Config) BuildEngine() (*engine.Engine, error) {
	path, err := c.BuildPath()
	if err != nil {
		return nil, err
	}
	integ, err := c.BuildIntegrator()
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(path, engine.Params{
		Mass:        c.Mass,
		Gravity:     c.Gravity,
		Damping:     c.Damping,
		Restitution: c.Restitution,
		Stickiness:  c.Stickiness,
	}, integ)
	if err != nil {
		return nil, err
	}
	if c.Spring != nil {
		sp, err := body.NewSpring(
			geom.Vec2{X: c.Spring.AnchorX, Y: c.Spring.AnchorY},
			c.Spring.RestLength, c.Spring.Stiffness, c.Spring.Damping)
		if err != nil {
			return nil, err
		}
		eng.AttachSpring(sp)
	}
	eng.Start(c.Start.X, c.Start.Y)
	if c.Start.Airborne {
		eng.Launch(c.Start.X, c.Start.Y, c.Start.VX, c.Start.VY)
	}
	return eng, nil
}
