package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/shadergen/internal/wire"
)

// ErrCycle is returned when generating a port leads back to itself.
var ErrCycle = errors.New("port graph contains a cycle")

var (
	ErrNoInterpolatorSlot = errors.New("pass has no interpolator slot")
	ErrNoVertexDataSlot   = errors.New("pass has no vertex data slot")
)

// InstructionKind tells a local variable from a port's final value.
type InstructionKind int

const (
	LocalVar InstructionKind = iota
	PortValue
)

// Instruction is one entry of a stage's instruction list.
type Instruction struct {
	Kind InstructionKind
	// Port is the pass port a PortValue instruction feeds.
	Port string
	Text string
}

// PassInfo is what units need to know about the pass they generate for.
type PassInfo struct {
	// VertexInput, VertexOutput and FragmentInput are the variable names of
	// the vertex input, vertex output and fragment input structs.
	VertexInput   string
	VertexOutput  string
	FragmentInput string
	// InterpStart is the first free TEXCOORD slot and InterpMax the slot
	// budget.
	InterpStart int
	InterpMax   int
	// HasInterpolators and HasVertexData report whether the pass has
	// somewhere to declare new interpolators and vertex attributes.
	HasInterpolators bool
	HasVertexData    bool
	// VertexData maps attributes the template already declares to their
	// field names.
	VertexData map[string]string
	// UsedInterpolators lists interpolator fields the template declares.
	UsedInterpolators []string
}

// Collector gathers everything generated for one pass in one build.
type Collector struct {
	session  *Session
	pass     PassInfo
	category wire.Category
	cache    *Cache

	inProgress map[cacheKey]bool
	reserved   map[string]bool

	uniforms      list
	functions     list
	properties    list
	includes      list
	pragmas       list
	defines       list
	interpolators list
	vertexData    list
	inputParams   [2]list
	instructions  [2][]Instruction
	locals        [2]map[string]bool

	interpSlot int
}

// NewCollector returns an empty collector for one pass. A new Cache is
// created with it.
func NewCollector(s *Session, pass PassInfo) *Collector {
	if pass.VertexInput == "" {
		pass.VertexInput = "v"
	}
	if pass.VertexOutput == "" {
		pass.VertexOutput = "o"
	}
	if pass.FragmentInput == "" {
		pass.FragmentInput = "i"
	}
	return &Collector{
		session:    s,
		pass:       pass,
		category:   wire.Fragment,
		cache:      NewCache(),
		inProgress: make(map[cacheKey]bool),
		reserved:   make(map[string]bool),
		locals:     [2]map[string]bool{make(map[string]bool), make(map[string]bool)},
		interpSlot: pass.InterpStart,
	}
}

func (c *Collector) Session() *Session { return c.session }

func (c *Collector) Pass() PassInfo { return c.pass }

func (c *Collector) Cache() *Cache { return c.cache }

// SetCategory switches the stage subsequent instructions are generated for.
func (c *Collector) SetCategory(cat wire.Category) { c.category = cat }

func (c *Collector) Category() wire.Category { return c.category }

// SoftRegisterUniform marks name as already declared by the template, so
// units asking for it do not declare it a second time.
func (c *Collector) SoftRegisterUniform(name string) { c.reserved[name] = true }

// GeneratePortInstructions returns the expression port should read in the
// current stage, generating everything upstream of it first.
func (c *Collector) GeneratePortInstructions(port *InputPort) (string, error) {
	if !port.IsConnected() {
		return port.Default, nil
	}
	src, out := port.Link.Node, port.Link.Output
	expr, err := c.generateOutput(src, out)
	if err != nil {
		return "", err
	}
	return wire.Cast(expr, src.outputs[out].DataType, port.DataType), nil
}

func (c *Collector) generateOutput(n *Node, out int) (string, error) {
	if out < 0 || out >= len(n.outputs) {
		return "", fmt.Errorf("node '%s' has no output %d", n.Name, out)
	}
	if expr, ok := c.cache.Get(n.ID, out, c.category); ok {
		return expr, nil
	}
	key := cacheKey{n.ID, out, c.category}
	if c.inProgress[key] {
		return "", fmt.Errorf("node '%s': %w", n.Name, ErrCycle)
	}
	c.inProgress[key] = true
	defer delete(c.inProgress, key)

	expr, err := n.Unit.GenerateShaderForOutput(n, out, c, false)
	if err != nil {
		return "", fmt.Errorf("failed to generate node '%s': %w", n.Name, err)
	}
	c.cache.Set(n.ID, out, c.category, expr)
	return expr, nil
}

// RegisterLocalVariable declares the value of output out of n as a local
// variable of the current stage and returns the variable name.
func (c *Collector) RegisterLocalVariable(n *Node, out int, dt wire.DataType, expr string) string {
	name := n.LocalVariableName(out)
	c.AddLocalVariable(fmt.Sprintf("%s %s = %s;", dt.CgType(), name, expr))
	return name
}

// AddLocalVariable appends a statement to the current stage unless the same
// statement is already there.
func (c *Collector) AddLocalVariable(text string) {
	if c.locals[c.category][text] {
		return
	}
	c.locals[c.category][text] = true
	c.instructions[c.category] = append(c.instructions[c.category], Instruction{Kind: LocalVar, Text: text})
}

// AddPortValue records the final value of a pass port in the current stage.
func (c *Collector) AddPortValue(port, expr string) {
	c.instructions[c.category] = append(c.instructions[c.category], Instruction{Kind: PortValue, Port: port, Text: expr})
}

// Instructions returns the instruction list of a stage.
func (c *Collector) Instructions(cat wire.Category) []Instruction { return c.instructions[cat] }

// LocalVariables returns the local variable statements of a stage.
func (c *Collector) LocalVariables(cat wire.Category) []string {
	var out []string
	for _, ins := range c.instructions[cat] {
		if ins.Kind == LocalVar {
			out = append(out, ins.Text)
		}
	}
	return out
}

// PortValue returns the value recorded for port in a stage.
func (c *Collector) PortValue(cat wire.Category, port string) (string, bool) {
	for _, ins := range c.instructions[cat] {
		if ins.Kind == PortValue && ins.Port == port {
			return ins.Text, true
		}
	}
	return "", false
}

// AddToUniforms declares a uniform unless name is already declared, either
// by a unit or by the template.
func (c *Collector) AddToUniforms(name string, dt wire.DataType) {
	if c.reserved[name] {
		return
	}
	c.uniforms.add(name, fmt.Sprintf("uniform %s %s;", dt.CgType(), name))
}

func (c *Collector) Uniforms() []string { return c.uniforms.items }

// AddFunction declares a helper function once per name.
func (c *Collector) AddFunction(name, body string) { c.functions.add(name, body) }

func (c *Collector) Functions() []string { return c.functions.items }

// AddProperty adds a material property declaration unless the template
// already declares name.
func (c *Collector) AddProperty(name, decl string) {
	if c.reserved[name] {
		return
	}
	c.properties.add(name, decl)
}

func (c *Collector) Properties() []string { return c.properties.items }

func (c *Collector) AddInclude(file string) { c.includes.add(file, file) }

func (c *Collector) Includes() []string { return c.includes.items }

func (c *Collector) AddPragma(p string) { c.pragmas.add(p, p) }

func (c *Collector) Pragmas() []string { return c.pragmas.items }

func (c *Collector) AddDefine(d string) { c.defines.add(d, d) }

func (c *Collector) Defines() []string { return c.defines.items }

// AddInterpolator declares a vertex-to-fragment field called name in the
// next free TEXCOORD slot. Fields the template already declares are reused.
func (c *Collector) AddInterpolator(name string, dt wire.DataType) error {
	for _, used := range c.pass.UsedInterpolators {
		if used == name {
			return nil
		}
	}
	if c.interpolators.has(name) {
		return nil
	}
	if !c.pass.HasInterpolators {
		return fmt.Errorf("interpolator '%s': %w", name, ErrNoInterpolatorSlot)
	}
	if c.pass.InterpMax > 0 && c.interpSlot >= c.pass.InterpMax {
		return fmt.Errorf("interpolator '%s' exceeds the budget of %d slots", name, c.pass.InterpMax)
	}
	c.interpolators.add(name, fmt.Sprintf("%s %s : TEXCOORD%d;", dt.CgType(), name, c.interpSlot))
	c.interpSlot++
	return nil
}

func (c *Collector) Interpolators() []string { return c.interpolators.items }

// Interpolate passes vertexExpr from the vertex stage to the fragment stage
// through an interpolator called name and returns the fragment read.
func (c *Collector) Interpolate(name string, dt wire.DataType, vertexExpr string) (string, error) {
	if err := c.AddInterpolator(name, dt); err != nil {
		return "", err
	}
	prev := c.category
	c.category = wire.Vertex
	c.AddLocalVariable(fmt.Sprintf("%s.%s = %s;", c.pass.VertexOutput, name, vertexExpr))
	c.category = prev
	return c.pass.FragmentInput + "." + name, nil
}

// AddVertexData declares a vertex input attribute and returns how the
// vertex stage reads it. Attributes the template declares are read from
// their existing field.
func (c *Collector) AddVertexData(name string, dt wire.DataType, semantic string) (string, error) {
	if field, ok := c.pass.VertexData[name]; ok {
		return c.pass.VertexInput + "." + field, nil
	}
	if !c.pass.HasVertexData {
		return "", fmt.Errorf("vertex attribute '%s': %w", name, ErrNoVertexDataSlot)
	}
	c.vertexData.add(name, fmt.Sprintf("%s %s : %s;", dt.CgType(), name, semantic))
	return c.pass.VertexInput + "." + name, nil
}

func (c *Collector) VertexData() []string { return c.vertexData.items }

// AddInputParam adds a parameter to the current stage's entry function.
func (c *Collector) AddInputParam(decl string) { c.inputParams[c.category].add(decl, decl) }

func (c *Collector) InputParams(cat wire.Category) []string { return c.inputParams[cat].items }

// InputParamsText renders the extra entry parameters of a stage, each
// preceded by a comma.
func (c *Collector) InputParamsText(cat wire.Category) string {
	var b strings.Builder
	for _, p := range c.inputParams[cat].items {
		b.WriteString(", ")
		b.WriteString(p)
	}
	return b.String()
}

// list is an insertion-ordered set of declarations keyed by name.
type list struct {
	keys  map[string]bool
	items []string
}

func (l *list) has(key string) bool { return l.keys[key] }

func (l *list) add(key, item string) {
	if l.keys == nil {
		l.keys = make(map[string]bool)
	}
	if l.keys[key] {
		return
	}
	l.keys[key] = true
	l.items = append(l.items, item)
}
