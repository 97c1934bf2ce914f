package metrics

import (
	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/engine"
)

// AirTime reports the fraction of observed steps spent in free flight.
type AirTime struct {
	name     string
	airborne int
	samples  int
}

func NewAirTime() *AirTime {
	return &AirTime{name: "air_time"}
}

func (a *AirTime) Name() string { return a.name }

func (a *AirTime) Observe(x dynamo.State, t float64) {
	if len(x) <= engine.IdxMode {
		return
	}
	a.samples++
	if x[engine.IdxMode] != 0 {
		a.airborne++
	}
}

func (a *AirTime) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.airborne) / float64(a.samples)
}

func (a *AirTime) Reset() {
	a.airborne = 0
	a.samples = 0
}
