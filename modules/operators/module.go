// Package operators provides the arithmetic units. Every operator stores
// its result in a local variable so a value read by several consumers is
// computed once.
package operators

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

// Config defines the arguments shared by every operator.
type Config struct {
	// Type is the type the operands are cast to and the result has.
	Type string `sgen:"type,optional"`
}

type operand struct {
	name string
	def  string
	// scalar operands keep their float type whatever the result type is.
	scalar bool
}

type operator struct {
	operands []operand
	format   func(args []string) string
}

func infix(op string) func([]string) string {
	return func(args []string) string {
		return "( " + args[0] + " " + op + " " + args[1] + " )"
	}
}

var operators = map[string]operator{
	"add":      {operands: []operand{{name: "a", def: "0.0"}, {name: "b", def: "0.0"}}, format: infix("+")},
	"subtract": {operands: []operand{{name: "a", def: "0.0"}, {name: "b", def: "0.0"}}, format: infix("-")},
	"multiply": {operands: []operand{{name: "a", def: "1.0"}, {name: "b", def: "1.0"}}, format: infix("*")},
	"divide":   {operands: []operand{{name: "a", def: "1.0"}, {name: "b", def: "1.0"}}, format: infix("/")},
	"lerp": {
		operands: []operand{{name: "a", def: "0.0"}, {name: "b", def: "1.0"}, {name: "alpha", def: "0.5", scalar: true}},
		format: func(args []string) string {
			return "lerp( " + strings.Join(args, " , ") + " )"
		},
	},
	"saturate": {
		operands: []operand{{name: "in", def: "0.0"}},
		format:   func(args []string) string { return "saturate( " + args[0] + " )" },
	},
	"one_minus": {
		operands: []operand{{name: "in", def: "0.0"}},
		format:   func(args []string) string { return "( 1.0 - " + args[0] + " )" },
	},
}

type unit struct {
	op operator
	dt wire.DataType
}

func newUnit(op operator, cfg *Config) (*unit, error) {
	dt := wire.Float4
	if cfg.Type != "" {
		var err error
		if dt, err = wire.ParseDataType(cfg.Type); err != nil {
			return nil, err
		}
	}
	if dt.Components() == 0 || dt == wire.Int {
		return nil, fmt.Errorf("operators work on float scalars and vectors, not %s", dt)
	}
	return &unit{op: op, dt: dt}, nil
}

func (u *unit) Inputs() []codegen.PortDef {
	defs := make([]codegen.PortDef, len(u.op.operands))
	for i, o := range u.op.operands {
		dt := u.dt
		if o.scalar {
			dt = wire.Float
		}
		defs[i] = codegen.PortDef{Name: o.name, DataType: dt, Default: o.def}
	}
	return defs
}

func (u *unit) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: u.dt}}
}

func (u *unit) GenerateShaderForOutput(n *codegen.Node, outputID int, c *codegen.Collector, ignoreLocalVar bool) (string, error) {
	args := make([]string, len(n.Inputs()))
	for i, in := range n.Inputs() {
		v, err := c.GeneratePortInstructions(in)
		if err != nil {
			return "", err
		}
		args[i] = v
	}
	expr := u.op.format(args)
	if ignoreLocalVar {
		return expr, nil
	}
	return c.RegisterLocalVariable(n, outputID, u.dt, expr), nil
}

// Register registers one unit kind per operator.
func (m *Module) Register(r *registry.Registry) {
	for kind, op := range operators {
		r.RegisterUnit(kind, &registry.RegisteredUnit{
			NewConfig: func() any { return new(Config) },
			New: func(_ context.Context, _ *codegen.Session, cfg any) (codegen.Unit, error) {
				return newUnit(op, cfg.(*Config))
			},
		})
	}
}
