// Package model defines the typed wizard model shared by the navigator, the
// per-step form controller and the renderers. A registration flow is an
// ordered list of Steps, each holding immutable Field descriptors. Field kinds
// are a closed enumeration (text, date, password, userTypeSelection); consumers
// treat any other kind as plain text. Accumulated answers travel as FormData,
// keyed by the field names in the Field* constants, which double as the JSON
// keys of the submission endpoint.
package model
