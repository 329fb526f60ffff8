package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/shadergen/internal/record"
)

// Model is everything a project declares.
type Model struct {
	Templates []*Template
	Shaders   []*Shader
	Nodes     []*Node
}

// Template is a template library entry declared by the project.
type Template struct {
	Name string
	GUID string
	// Path is relative to the directory of File unless absolute.
	Path string
	SRP  bool
	File string
}

// Shader is one generated shader.
type Shader struct {
	Name string
	// Template is a template GUID or name.
	Template string
	LOD      int
	HasLOD   bool
	Passes   []*Pass
	// File is the project file the shader was declared in.
	File string
}

// Pass binds ports and overrides to one template pass, matched by name.
type Pass struct {
	Name string
	// Ports maps a template port name to "node" or "node.output".
	Ports   map[string]string
	Modules []*ModuleOverride
}

// ModuleOverride is a render-state record applied to the subshader or the
// pass module of the same name.
type ModuleOverride struct {
	Level  string
	Name   string
	Fields record.Fields
}

// Node is one codegen unit instance.
type Node struct {
	Kind string
	Name string
	// Inputs maps an input port of the unit to "node" or "node.output".
	Inputs    map[string]string
	Arguments map[string]hcl.Expression
}

// Shader returns the shader called name.
func (m *Model) Shader(name string) (*Shader, bool) {
	for _, s := range m.Shaders {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
