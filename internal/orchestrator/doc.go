// Package orchestrator turns a template and a codegen graph into a shader.
//
// Every pass of the template is represented by a PassUnit. A Shader owns
// one unit per pass, keeps them in step with the template, and on every
// build walks them in (subshader, pass) order: each unit collects the code
// its ports need, renders its render states and fragments, and the
// template index splices everything into the final text.
package orchestrator
