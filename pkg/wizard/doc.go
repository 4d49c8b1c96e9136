// Package wizard owns the state of a registration session.
//
// A Navigator holds the ordered steps, the current index and the accumulated
// answers. Selecting a user type rebuilds the branching step and appends a
// review step that lists every non-selector field collected before it.
// Consumers observe changes through Subscribe instead of re-reading state on
// a timer.
//
// A Flow connects a Navigator to the per-step form controller from package
// form: it builds the controller for the current step, merges validated
// values, advances, and hands the final answers to a submit function.
package wizard
