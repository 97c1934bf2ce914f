// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical integrator interface
//   - [Metric]: aggregated per-run observation
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. One simulation tick is
// a single synchronous call chain; drivers may pause or cancel only between
// ticks.
package dynamo
