// Package vertex provides units that read per-vertex data or move values
// between the vertex and fragment stages.
package vertex

import (
	"context"
	"fmt"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/wire"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// InterpolatorConfig defines the arguments of the 'vertex_to_fragment' unit.
type InterpolatorConfig struct {
	Type string `sgen:"type,optional"`
}

var channels = []codegen.PortDef{
	{Name: "r", DataType: wire.Float},
	{Name: "g", DataType: wire.Float},
	{Name: "b", DataType: wire.Float},
	{Name: "a", DataType: wire.Float},
}

type colorUnit struct{}

func (colorUnit) Inputs() []codegen.PortDef { return nil }

func (colorUnit) Outputs() []codegen.PortDef {
	return append([]codegen.PortDef{{Name: "rgba", DataType: wire.Float4}}, channels...)
}

func (colorUnit) GenerateShaderForOutput(_ *codegen.Node, outputID int, c *codegen.Collector, _ bool) (string, error) {
	expr, err := c.AddVertexData("color", wire.Float4, "COLOR")
	if err != nil {
		return "", err
	}
	if c.Category() == wire.Fragment {
		if expr, err = c.Interpolate("ase_color", wire.Float4, expr); err != nil {
			return "", err
		}
	}
	if outputID > 0 {
		return expr + "." + channels[outputID-1].Name, nil
	}
	return expr, nil
}

type interpolatorUnit struct{ dt wire.DataType }

func newInterpolator(cfg *InterpolatorConfig) (*interpolatorUnit, error) {
	dt := wire.Float4
	if cfg.Type != "" {
		var err error
		if dt, err = wire.ParseDataType(cfg.Type); err != nil {
			return nil, err
		}
	}
	if dt.Components() == 0 {
		return nil, fmt.Errorf("%s cannot be interpolated", dt)
	}
	return &interpolatorUnit{dt: dt}, nil
}

func (u *interpolatorUnit) Inputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "in", DataType: u.dt, Default: "0"}}
}

func (u *interpolatorUnit) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: u.dt}}
}

// GenerateShaderForOutput evaluates the input in the vertex stage and
// hands the result to the fragment stage through an interpolator.
func (u *interpolatorUnit) GenerateShaderForOutput(n *codegen.Node, _ int, c *codegen.Collector, _ bool) (string, error) {
	stage := c.Category()
	c.SetCategory(wire.Vertex)
	value, err := c.GeneratePortInstructions(n.InputAt(0))
	c.SetCategory(stage)
	if err != nil {
		return "", err
	}
	if stage == wire.Vertex {
		return value, nil
	}
	return c.Interpolate(fmt.Sprintf("vertexToFrag%d", n.ID), u.dt, value)
}

type faceUnit struct{}

func (faceUnit) Inputs() []codegen.PortDef { return nil }

func (faceUnit) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: wire.Float}}
}

// GenerateShaderForOutput reads the facing register: positive for front
// faces, negative for back faces.
func (faceUnit) GenerateShaderForOutput(_ *codegen.Node, _ int, c *codegen.Collector, _ bool) (string, error) {
	if c.Category() != wire.Fragment {
		return "", fmt.Errorf("face is only known in the fragment stage")
	}
	c.AddInputParam("half ase_vface : VFACE")
	return "ase_vface", nil
}

// Register registers the vertex units with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("vertex_color", &registry.RegisteredUnit{
		New: func(context.Context, *codegen.Session, any) (codegen.Unit, error) { return colorUnit{}, nil },
	})
	r.RegisterUnit("vertex_to_fragment", &registry.RegisteredUnit{
		NewConfig: func() any { return new(InterpolatorConfig) },
		New: func(_ context.Context, _ *codegen.Session, cfg any) (codegen.Unit, error) {
			return newInterpolator(cfg.(*InterpolatorConfig))
		},
	})
	r.RegisterUnit("face", &registry.RegisteredUnit{
		New: func(context.Context, *codegen.Session, any) (codegen.Unit, error) { return faceUnit{}, nil },
	})
}
