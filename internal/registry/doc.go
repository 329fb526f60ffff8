// Package registry provides the central "glue" for the unit system.
//
// The Registry maps the unit kinds used in project files (e.g. "multiply")
// to the compiled Go constructors that implement them. During application
// startup every built-in module registers its units, and the registry is
// then validated so that a broken config struct fails fast instead of at
// the first build. Project models are checked against the registry before
// any graph is assembled.
package registry
