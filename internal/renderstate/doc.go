// Package renderstate holds the render-state modules a pass or subshader
// can override: blend, cull, color mask, depth, stencil, tags, shader model
// and the additional pragma, include and define directives.
//
// Every module is configured from what the template declares at its level
// and only renders when the template declares that state. User overrides
// survive template changes; a state the template stops declaring is simply
// no longer emitted. A Set groups the modules of one level and drives their
// persistence in a fixed order.
package renderstate
