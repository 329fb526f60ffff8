// Package hcladapter loads shadergen projects written in HCL and binds node
// arguments to unit config structs. It implements config.Loader and
// config.Converter.
package hcladapter
