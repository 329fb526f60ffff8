package testutil

import "github.com/specialistvlad/shadergen/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single unit kind.
type SimpleModule struct {
	Kind string
	Unit *registry.RegisteredUnit
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Kind != "" && m.Unit != nil {
		r.RegisterUnit(m.Kind, m.Unit)
	}
}
