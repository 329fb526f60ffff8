// Package codegen turns a graph of codegen units into shader instructions.
//
// A Graph holds Nodes, each wrapping a Unit and exposing typed input and
// output ports. Generation is driven by a Collector: asking it for the value
// of an input port walks upstream through the links, lets every unit emit its
// declarations (uniforms, functions, interpolators, local variables), and
// returns the expression the port should read. Each (node, output, stage)
// triple is generated at most once per build, so shared upstream nodes are
// emitted a single time.
//
// Anything that must be unique for the lifetime of a project, such as the
// names of material uniforms, lives in a Session rather than in package
// state.
package codegen
