// Package template parses shader template documents.
//
// A template is ordinary shader source carrying comment markers such as
// /*ase_globals*/ or /*ase_frag_out:Color;Float4*/ that tell the generator
// where generated text goes. Parse locates the subshaders and passes of a
// template, reads the render states declared at each level and records
// every marker in an Index. Builds clone that index and hand it a map of
// fragments to Splice into the body.
//
// A Library holds the templates available to a project, loaded from a
// directory and looked up by GUID or name.
package template
