// Package dynamo provides core simulation primitives for the two-scale
// Lorenz-96 lab.
//
// The package defines the fundamental interfaces and types shared by
// the models, steppers and the runner:
//
//   - [State]: flat vector of model variables
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Partitioned]: slow/fast split of a system's state
//   - [Integrator]: fixed-step numerical stepper
//   - [Trajectory]: sampled run output with a validity prefix
//
// # Divergence policy
//
// A run whose slow variables exceed Config.Threshold is truncated, not
// failed: the returned [Trajectory] keeps NaN sentinels past Valid and
// the runner reports no error. Callers must consult Valid before using
// trailing samples.
//
// # Thread Safety
//
// Runner instances are NOT thread-safe. For parallel trajectories use
// sim.Ensemble, which gives every run its own state.
package dynamo
