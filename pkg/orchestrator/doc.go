// Package orchestrator renders a single wizard step without a live session:
// it derives the step list for a user type, prefills the step from supplied
// answers, optionally validates it and hands the view to a named renderer.
// The HTTP server and the render command both go through it.
package orchestrator
