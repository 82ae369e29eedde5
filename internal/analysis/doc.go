// Package analysis provides diagnostics over recorded trajectories:
// truth-vs-GCM error statistics, power spectra, a largest-Lyapunov
// estimate and a forcing sweep.
package analysis
