// Package dag is a small directed dependency graph keyed by string ids. The
// builder checks the codegen node links with one before every build to
// reject cycles up front, and the codegen graph uses its topological order
// to release units deterministically.
package dag
