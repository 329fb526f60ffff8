// Package properties provides material property units. A property is a
// uniform the material exposes in its Properties block; its name is claimed
// in the session when the node is created, so two nodes can never declare
// the same uniform.
package properties

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/wire"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// FloatConfig defines the arguments of the 'float_property' unit.
type FloatConfig struct {
	Name    string  `sgen:"name"`
	Label   string  `sgen:"label,optional"`
	Default float64 `sgen:"default,optional"`
	// Range turns the property into a slider between two values.
	Range []float64 `sgen:"range,optional"`
}

// ColorConfig defines the arguments of the 'color_property' unit.
type ColorConfig struct {
	Name    string    `sgen:"name"`
	Label   string    `sgen:"label,optional"`
	Default []float64 `sgen:"default,optional"`
	HDR     bool      `sgen:"hdr,optional"`
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Uniform is a uniform name claimed in a session.
type Uniform struct {
	Name  string
	owner int
}

// Claim registers name in the session uniform registry under a new owner.
func Claim(s *codegen.Session, name string) (*Uniform, error) {
	if !identifier.MatchString(name) {
		return nil, fmt.Errorf("property name '%s' is not a valid identifier", name)
	}
	owner := s.NewOwner()
	if !s.Uniforms.Register(owner, name) {
		return nil, fmt.Errorf("property name '%s' is already used by another node", name)
	}
	return &Uniform{Name: name, owner: owner}, nil
}

// Release frees the name again.
func (u *Uniform) Release(s *codegen.Session) {
	s.Uniforms.Release(u.owner, u.Name)
}

// Label returns label, or a readable form of the uniform name when label
// is empty: "_MainColor" becomes "Main Color".
func Label(label, name string) string {
	if label != "" {
		return label
	}
	name = strings.ReplaceAll(strings.TrimLeft(name, "_"), "_", " ")
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' && name[i-1] >= 'a' && name[i-1] <= 'z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// number renders v the way Properties blocks write numbers.
func number(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type floatProperty struct {
	*Uniform
	decl string
}

func newFloatProperty(s *codegen.Session, cfg *FloatConfig) (*floatProperty, error) {
	kind := "Float"
	switch len(cfg.Range) {
	case 0:
	case 2:
		kind = fmt.Sprintf("Range( %s , %s)", number(cfg.Range[0]), number(cfg.Range[1]))
	default:
		return nil, fmt.Errorf("range takes a minimum and a maximum, got %d values", len(cfg.Range))
	}
	u, err := Claim(s, cfg.Name)
	if err != nil {
		return nil, err
	}
	decl := fmt.Sprintf("%s(\"%s\", %s) = %s", cfg.Name, Label(cfg.Label, cfg.Name), kind, number(cfg.Default))
	return &floatProperty{Uniform: u, decl: decl}, nil
}

func (p *floatProperty) Inputs() []codegen.PortDef { return nil }

func (p *floatProperty) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: wire.Float}}
}

func (p *floatProperty) GenerateShaderForOutput(_ *codegen.Node, _ int, c *codegen.Collector, _ bool) (string, error) {
	c.AddProperty(p.Name, p.decl)
	c.AddToUniforms(p.Name, wire.Float)
	return p.Name, nil
}

func (p *floatProperty) Close(s *codegen.Session) { p.Release(s) }

type colorProperty struct {
	*Uniform
	decl string
}

func newColorProperty(s *codegen.Session, cfg *ColorConfig) (*colorProperty, error) {
	value := []float64{0, 0, 0, 0}
	switch len(cfg.Default) {
	case 0:
	case 3:
		value = append(append([]float64(nil), cfg.Default...), 1)
	case 4:
		value = cfg.Default
	default:
		return nil, fmt.Errorf("color default takes 3 or 4 components, got %d", len(cfg.Default))
	}
	u, err := Claim(s, cfg.Name)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(value))
	for i, v := range value {
		parts[i] = number(v)
	}
	var attr string
	if cfg.HDR {
		attr = "[HDR]"
	}
	decl := fmt.Sprintf("%s%s(\"%s\", Color) = (%s)", attr, cfg.Name, Label(cfg.Label, cfg.Name), strings.Join(parts, ","))
	return &colorProperty{Uniform: u, decl: decl}, nil
}

func (p *colorProperty) Inputs() []codegen.PortDef { return nil }

// Outputs are the color followed by its four channels.
func (p *colorProperty) Outputs() []codegen.PortDef {
	return []codegen.PortDef{
		{Name: "rgba", DataType: wire.Color},
		{Name: "r", DataType: wire.Float},
		{Name: "g", DataType: wire.Float},
		{Name: "b", DataType: wire.Float},
		{Name: "a", DataType: wire.Float},
	}
}

func (p *colorProperty) GenerateShaderForOutput(_ *codegen.Node, outputID int, c *codegen.Collector, _ bool) (string, error) {
	c.AddProperty(p.Name, p.decl)
	c.AddToUniforms(p.Name, wire.Float4)
	if outputID == 0 {
		return p.Name, nil
	}
	return p.Name + "." + string("rgba"[outputID-1]), nil
}

func (p *colorProperty) Close(s *codegen.Session) { p.Release(s) }

// Register registers the property units with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("float_property", &registry.RegisteredUnit{
		NewConfig: func() any { return new(FloatConfig) },
		New: func(_ context.Context, s *codegen.Session, cfg any) (codegen.Unit, error) {
			return newFloatProperty(s, cfg.(*FloatConfig))
		},
	})
	r.RegisterUnit("color_property", &registry.RegisteredUnit{
		NewConfig: func() any { return new(ColorConfig) },
		New: func(_ context.Context, s *codegen.Session, cfg any) (codegen.Unit, error) {
			return newColorProperty(s, cfg.(*ColorConfig))
		},
	})
}
