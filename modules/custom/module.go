// Package custom provides the custom expression unit, which splices user
// code into the generated shader.
//
// In expression mode the code is a single expression over the declared
// parameters and is inlined with the arguments substituted. In call mode
// the code is the body of a function the unit declares once per shader and
// calls with the arguments.
package custom

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/wire"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const (
	ModeExpression = "expression"
	ModeCall       = "call"
)

// Config defines the arguments of the 'custom_expression' unit.
type Config struct {
	Code string `sgen:"code"`
	Mode string `sgen:"mode,optional"`
	// Type is the type of the result.
	Type string `sgen:"type,optional"`
	// Params declares the inputs in order, each as "<type> <name>".
	Params []string `sgen:"params,optional"`
	// Function names the declared function in call mode.
	Function string `sgen:"function,optional"`
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type param struct {
	name string
	dt   wire.DataType
}

type unit struct {
	code     string
	mode     string
	dt       wire.DataType
	params   []param
	function string
	// refs matches parameter names in expression code, along with a
	// leading dot so member accesses can be left alone.
	refs *regexp.Regexp
}

func newUnit(cfg *Config) (*unit, error) {
	u := &unit{code: strings.TrimSpace(cfg.Code), mode: cfg.Mode, dt: wire.Float4, function: cfg.Function}
	if u.code == "" {
		return nil, fmt.Errorf("custom expression has no code")
	}
	switch u.mode {
	case "":
		u.mode = ModeExpression
	case ModeExpression, ModeCall:
	default:
		return nil, fmt.Errorf("unknown mode '%s', expected '%s' or '%s'", cfg.Mode, ModeExpression, ModeCall)
	}
	if cfg.Type != "" {
		dt, err := wire.ParseDataType(cfg.Type)
		if err != nil {
			return nil, err
		}
		u.dt = dt
	}
	if u.function != "" && !identifier.MatchString(u.function) {
		return nil, fmt.Errorf("function name '%s' is not a valid identifier", u.function)
	}

	seen := make(map[string]bool)
	for _, decl := range cfg.Params {
		fields := strings.Fields(decl)
		if len(fields) != 2 {
			return nil, fmt.Errorf("parameter '%s' must be written as '<type> <name>'", decl)
		}
		dt, err := wire.ParseDataType(fields[0])
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", decl, err)
		}
		name := fields[1]
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("parameter name '%s' is not a valid identifier", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("parameter '%s' is declared twice", name)
		}
		seen[name] = true
		u.params = append(u.params, param{name: name, dt: dt})
	}
	if len(u.params) > 0 {
		names := make([]string, len(u.params))
		for i, p := range u.params {
			names[i] = p.name
		}
		u.refs = regexp.MustCompile(`\.?\b(?:` + strings.Join(names, "|") + `)\b`)
	}
	return u, nil
}

func (u *unit) Inputs() []codegen.PortDef {
	defs := make([]codegen.PortDef, len(u.params))
	for i, p := range u.params {
		defs[i] = codegen.PortDef{Name: p.name, DataType: p.dt, Default: "0"}
	}
	return defs
}

func (u *unit) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: u.dt}}
}

func (u *unit) GenerateShaderForOutput(n *codegen.Node, outputID int, c *codegen.Collector, ignoreLocalVar bool) (string, error) {
	args := make([]string, len(u.params))
	for i, in := range n.Inputs() {
		v, err := c.GeneratePortInstructions(in)
		if err != nil {
			return "", err
		}
		args[i] = v
	}

	var expr string
	switch u.mode {
	case ModeCall:
		name := u.functionName(n)
		c.AddFunction(name, u.declaration(name))
		expr = fmt.Sprintf("%s( %s )", name, strings.Join(args, " , "))
	default:
		expr = u.substitute(args)
	}
	if ignoreLocalVar {
		return expr, nil
	}
	return c.RegisterLocalVariable(n, outputID, u.dt, expr), nil
}

// substitute replaces every parameter name in the code with its argument
// in one pass, so an argument is never rewritten again.
func (u *unit) substitute(args []string) string {
	if u.refs == nil {
		return u.code
	}
	index := make(map[string]int, len(u.params))
	for i, p := range u.params {
		index[p.name] = i
	}
	return u.refs.ReplaceAllStringFunc(u.code, func(m string) string {
		if strings.HasPrefix(m, ".") {
			return m
		}
		return wire.Paren(args[index[m]])
	})
}

func (u *unit) functionName(n *codegen.Node) string {
	if u.function != "" {
		return u.function
	}
	return fmt.Sprintf("CustomExpression%d", n.ID)
}

func (u *unit) declaration(name string) string {
	params := make([]string, len(u.params))
	for i, p := range u.params {
		params[i] = p.dt.CgType() + " " + p.name
	}
	body := u.code
	if !strings.Contains(body, "return") {
		body = "return " + strings.TrimSuffix(body, ";") + ";"
	}
	return fmt.Sprintf("%s %s( %s )\n{\n\t%s\n}\n", u.dt.CgType(), name, strings.Join(params, " , "), body)
}

// Register registers the custom expression unit with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("custom_expression", &registry.RegisteredUnit{
		NewConfig: func() any { return new(Config) },
		New: func(_ context.Context, _ *codegen.Session, cfg any) (codegen.Unit, error) {
			return newUnit(cfg.(*Config))
		},
	})
}
