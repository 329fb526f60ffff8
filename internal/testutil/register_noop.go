package testutil

import (
	"context"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/wire"
)

// NoOpKind is the kind NoOpModule registers.
const NoOpKind = "noop"

// NoOpModule registers a "noop" unit with no inputs and no arguments whose
// single Float4 output is a constant. It is useful for tests that need a
// valid graph but don't care what it generates.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterUnit(NoOpKind, &registry.RegisteredUnit{
		New: func(ctx context.Context, s *codegen.Session, cfg any) (codegen.Unit, error) {
			return &LiteralUnit{Expr: "float4(0,0,0,0)", Type: wire.Float4}, nil
		},
	})
}

// LiteralUnit outputs Expr as a value of Type.
type LiteralUnit struct {
	Expr string
	Type wire.DataType
}

func (u *LiteralUnit) Inputs() []codegen.PortDef { return nil }

func (u *LiteralUnit) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: u.Type}}
}

func (u *LiteralUnit) GenerateShaderForOutput(n *codegen.Node, outputID int, c *codegen.Collector, ignoreLocalVar bool) (string, error) {
	return u.Expr, nil
}
