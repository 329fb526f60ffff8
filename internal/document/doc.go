// Package document persists the per-pass state of a shader: the template it
// is bound to, the pass names and the render-state modules the user changed.
//
// Documents are written in a tagged HCL format where every module is its own
// block of named fields. Documents saved in the older flat field stream are
// read once through FromLegacy and rewritten in the tagged format; nothing
// is ever written in the flat shape.
package document
