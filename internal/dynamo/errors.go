package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrBisectionDiverged indicates the collision-instant search exhausted
	// its iteration budget without isolating the contact.
	ErrBisectionDiverged = errors.New("dynamo: collision bisection did not converge")

	// ErrTrigDomain indicates a trig argument drifted far outside [-1, 1],
	// meaning geometry and state are inconsistent.
	ErrTrigDomain = errors.New("dynamo: trig argument outside domain")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")
)

// Fault wraps an error with the simulation context it occurred in. The
// interval is the [t0, t1] span of the step being advanced when the fault
// was detected.
type Fault struct {
	Time     float64
	Interval [2]float64
	Wrapped  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("t=%.6f (step interval [%.6f, %.6f]): %v",
		f.Time, f.Interval[0], f.Interval[1], f.Wrapped)
}

func (f *Fault) Unwrap() error {
	return f.Wrapped
}
