// Package constants provides literal value units.
package constants

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/wire"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// FloatConfig defines the arguments of the 'float' unit.
type FloatConfig struct {
	Value float64 `sgen:"value,optional"`
}

// VectorConfig defines the arguments of the 'vector' unit.
type VectorConfig struct {
	Value []float64 `sgen:"value"`
}

type floatUnit struct{ value float64 }

func (u *floatUnit) Inputs() []codegen.PortDef { return nil }

func (u *floatUnit) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: wire.Float}}
}

// GenerateShaderForOutput inlines the literal. Constants never need a local
// variable.
func (u *floatUnit) GenerateShaderForOutput(_ *codegen.Node, _ int, _ *codegen.Collector, _ bool) (string, error) {
	return wire.FormatFloat(u.value), nil
}

var vectorTypes = map[int]wire.DataType{2: wire.Float2, 3: wire.Float3, 4: wire.Float4}

type vectorUnit struct {
	dt     wire.DataType
	values []float64
}

func newVector(values []float64) (*vectorUnit, error) {
	dt, ok := vectorTypes[len(values)]
	if !ok {
		return nil, fmt.Errorf("vector takes 2 to 4 components, got %d", len(values))
	}
	return &vectorUnit{dt: dt, values: values}, nil
}

func (u *vectorUnit) Inputs() []codegen.PortDef { return nil }

// Outputs are the whole vector followed by one output per component.
func (u *vectorUnit) Outputs() []codegen.PortDef {
	outs := []codegen.PortDef{{Name: "out", DataType: u.dt}}
	for i := range u.values {
		outs = append(outs, codegen.PortDef{Name: string("xyzw"[i]), DataType: wire.Float})
	}
	return outs
}

func (u *vectorUnit) GenerateShaderForOutput(_ *codegen.Node, outputID int, _ *codegen.Collector, _ bool) (string, error) {
	if outputID > 0 {
		return wire.FormatFloat(u.values[outputID-1]), nil
	}
	parts := make([]string, len(u.values))
	for i, v := range u.values {
		parts[i] = wire.FormatFloat(v)
	}
	return fmt.Sprintf("%s(%s)", u.dt.CgType(), strings.Join(parts, ",")), nil
}

// Register registers the constant units with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("float", &registry.RegisteredUnit{
		NewConfig: func() any { return new(FloatConfig) },
		New: func(_ context.Context, _ *codegen.Session, cfg any) (codegen.Unit, error) {
			return &floatUnit{value: cfg.(*FloatConfig).Value}, nil
		},
	})
	r.RegisterUnit("vector", &registry.RegisteredUnit{
		NewConfig: func() any { return new(VectorConfig) },
		New: func(_ context.Context, _ *codegen.Session, cfg any) (codegen.Unit, error) {
			return newVector(cfg.(*VectorConfig).Value)
		},
	})
}
