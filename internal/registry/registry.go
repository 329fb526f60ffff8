package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/shadergen/internal/codegen"
)

// Module is the interface that all built-in modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// RegisteredUnit holds the compiled Go parts of one unit kind.
type RegisteredUnit struct {
	// NewConfig returns a pointer to a zero config struct, or nil for units
	// without arguments.
	NewConfig func() any
	// New creates a unit from its decoded config.
	New func(ctx context.Context, s *codegen.Session, cfg any) (codegen.Unit, error)
}

// Registry holds every registered unit kind for a single application instance.
type Registry struct {
	units map[string]*RegisteredUnit
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{units: make(map[string]*RegisteredUnit)}
}

// RegisterUnit registers the constructor of a unit kind.
func (r *Registry) RegisterUnit(kind string, u *RegisteredUnit) {
	if _, exists := r.units[kind]; exists {
		panic(fmt.Sprintf("unit with kind '%s' already registered", kind))
	}
	slog.Debug("Registering unit.", "kind", kind)
	r.units[kind] = u
}

// Unit returns the registration of kind.
func (r *Registry) Unit(kind string) (*RegisteredUnit, bool) {
	u, ok := r.units[kind]
	return u, ok
}

// Kinds returns every registered kind, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.units))
	for k := range r.units {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
