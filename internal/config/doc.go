// Package config defines the format-agnostic project model: template
// library entries, shaders with their per-pass overrides, and the codegen
// nodes that feed them. It also declares the Loader and Converter
// interfaces. The HCL implementation lives in the hcladapter package.
package config
