// Package viz renders trajectories in the terminal.
//
// Two surfaces are provided: static ASCII charts built on asciigraph
// for the plot and hovmoller commands, and a live Bubble Tea view that
// integrates the model in real time and draws the slow ring as
// sparklines.
//
// # Live view key bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state
//	Tab   - Cycle the tracked slow variable
//	+/-   - Nudge the forcing parameter
//	Q     - Quit
package viz
