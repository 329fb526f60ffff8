// Package textures provides the 2D texture sample unit.
package textures

import (
	"context"
	"fmt"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/wire"
	"github.com/specialistvlad/shadergen/modules/properties"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// SampleConfig defines the arguments of the 'texture_sample' unit.
type SampleConfig struct {
	Name  string `sgen:"name"`
	Label string `sgen:"label,optional"`
	// Default is the texture used when the material sets none.
	Default string `sgen:"default,optional"`
}

var defaultTextures = map[string]bool{"white": true, "black": true, "gray": true, "bump": true, "red": true}

// uvInterpolator carries the first texture coordinate set to the fragment
// stage. Every sampler without a uv input shares it.
const uvInterpolator = "ase_texcoord"

type sampleUnit struct {
	*properties.Uniform
	decl string
}

func newSample(s *codegen.Session, cfg *SampleConfig) (*sampleUnit, error) {
	def := cfg.Default
	if def == "" {
		def = "white"
	}
	if !defaultTextures[def] {
		return nil, fmt.Errorf("unknown default texture '%s'", def)
	}
	u, err := properties.Claim(s, cfg.Name)
	if err != nil {
		return nil, err
	}
	decl := fmt.Sprintf("%s(\"%s\", 2D) = \"%s\" {}", cfg.Name, properties.Label(cfg.Label, cfg.Name), def)
	return &sampleUnit{Uniform: u, decl: decl}, nil
}

func (u *sampleUnit) Inputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "uv", DataType: wire.Float2}}
}

// Outputs are the sampled color followed by its four channels.
func (u *sampleUnit) Outputs() []codegen.PortDef {
	return []codegen.PortDef{
		{Name: "rgba", DataType: wire.Float4},
		{Name: "r", DataType: wire.Float},
		{Name: "g", DataType: wire.Float},
		{Name: "b", DataType: wire.Float},
		{Name: "a", DataType: wire.Float},
	}
}

func (u *sampleUnit) GenerateShaderForOutput(n *codegen.Node, outputID int, c *codegen.Collector, ignoreLocalVar bool) (string, error) {
	c.AddProperty(u.Name, u.decl)
	c.AddToUniforms(u.Name, wire.Sampler2D)

	uv, err := u.coordinates(n, c)
	if err != nil {
		return "", err
	}
	sample := fmt.Sprintf("tex2D( %s, %s )", u.Name, uv)
	if c.Category() == wire.Vertex {
		sample = fmt.Sprintf("tex2Dlod( %s, float4( %s, 0, 0.0) )", u.Name, uv)
	}
	if ignoreLocalVar {
		if outputID > 0 {
			return wire.Paren(sample) + "." + string("rgba"[outputID-1]), nil
		}
		return sample, nil
	}
	local := c.RegisterLocalVariable(n, 0, wire.Float4, sample)
	if outputID > 0 {
		return local + "." + string("rgba"[outputID-1]), nil
	}
	return local, nil
}

// coordinates returns the uv the texture is sampled at. A connected uv
// input is used as is. Otherwise the mesh's first texture coordinate set is
// read and the material's tiling and offset applied.
func (u *sampleUnit) coordinates(n *codegen.Node, c *codegen.Collector) (string, error) {
	if in := n.InputAt(0); in.IsConnected() {
		return c.GeneratePortInstructions(in)
	}
	st := u.Name + "_ST"
	c.AddToUniforms(st, wire.Float4)

	uv, err := c.AddVertexData("uv0", wire.Float2, "TEXCOORD0")
	if err != nil {
		return "", err
	}
	if c.Category() == wire.Fragment {
		if uv, err = c.Interpolate(uvInterpolator, wire.Float2, uv); err != nil {
			return "", err
		}
	}
	name := "uv" + u.Name
	c.AddLocalVariable(fmt.Sprintf("float2 %s = %s * %s.xy + %s.zw;", name, uv, st, st))
	return name, nil
}

func (u *sampleUnit) Close(s *codegen.Session) { u.Release(s) }

// Register registers the texture units with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("texture_sample", &registry.RegisteredUnit{
		NewConfig: func() any { return new(SampleConfig) },
		New: func(_ context.Context, s *codegen.Session, cfg any) (codegen.Unit, error) {
			return newSample(s, cfg.(*SampleConfig))
		},
	})
}
