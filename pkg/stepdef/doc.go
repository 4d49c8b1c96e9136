// Package stepdef loads the static description of a registration flow: the
// initial steps, the per user type replacement for the branching step and the
// identity of the derived review step. Definitions are JSON or YAML documents;
// the default flow is embedded. Labels, titles and placeholders are reduced to
// plain text with a strict bluemonday policy while loading.
package stepdef
