package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/renderstate"
	"github.com/specialistvlad/shadergen/internal/template"
	"github.com/specialistvlad/shadergen/internal/wire"
)

// SRP templates switch features on with defines when these ports are used.
var srpPortDefines = []struct {
	contains string
	define   string
}{
	{"Normal", "_NORMALMAP 1"},
	{"Alpha Clip Threshold", "_AlphaClip 1"},
}

type portSlot struct {
	info template.PortInfo
	port *codegen.InputPort
}

// PassUnit is the master node of one template pass. Its ports are what the
// pass exposes to the graph, its module sets are the render states the
// pass and its subshader render.
type PassUnit struct {
	session *codegen.Session
	owner   int
	tmpl    *template.Template

	subIdx  int
	passIdx int
	state   State
	valid   bool

	IsMain           bool
	IsInvisible      bool
	OriginalPassName string
	// PassName is the name rendered into the Name line. It starts as the
	// template's name.
	PassName string

	lod    int
	hasLOD bool

	ports []*portSlot

	SubShaderModules *renderstate.Set
	PassModules      *renderstate.Set

	collector  *codegen.Collector
	registered []string
}

// NewPassUnit returns an unbound unit. SetTemplate must be called before
// the unit takes part in a build.
func NewPassUnit(s *codegen.Session) *PassUnit {
	return &PassUnit{session: s, owner: s.NewOwner()}
}

func (u *PassUnit) State() State { return u.state }

func (u *PassUnit) IsValid() bool { return u.valid }

func (u *PassUnit) SubShaderIndex() int { return u.subIdx }

func (u *PassUnit) PassIndex() int { return u.passIdx }

func (u *PassUnit) Template() *template.Template { return u.tmpl }

// Collector returns the collector of the last CollectData call.
func (u *PassUnit) Collector() *codegen.Collector { return u.collector }

// SetLOD overrides the LOD of the unit's subshader.
func (u *PassUnit) SetLOD(lod int) {
	u.lod, u.hasLOD = lod, true
}

// Port returns the input port called name.
func (u *PassUnit) Port(name string) (*codegen.InputPort, bool) {
	for _, s := range u.ports {
		if s.info.Name == name {
			return s.port, true
		}
	}
	return nil, false
}

// Ports returns the input ports in template order.
func (u *PassUnit) Ports() []*codegen.InputPort {
	out := make([]*codegen.InputPort, len(u.ports))
	for i, s := range u.ports {
		out[i] = s.port
	}
	return out
}

func (u *PassUnit) portNames() []string {
	names := make([]string, len(u.ports))
	for i, s := range u.ports {
		names[i] = s.info.Name
	}
	return names
}

// SetTemplate binds the unit to pass (sub, pass) of tmpl. Ports keep their
// connections when the port count is unchanged and are rebuilt otherwise.
// Render states the user changed survive the switch.
func (u *PassUnit) SetTemplate(ctx context.Context, tmpl *template.Template, sub, pass int) error {
	if tmpl == nil {
		u.Invalidate()
		return ErrInvalidTemplate
	}
	p, ok := tmpl.Pass(sub, pass)
	if !ok {
		return fmt.Errorf("template '%s' has no pass %d in subshader %d", tmpl.Name, pass, sub)
	}
	logger := ctxlog.FromContext(ctx).With("template", tmpl.Name, "subshader", sub, "pass", pass)
	logger.Debug("Binding pass unit to template.")

	renamed := u.PassName == "" || u.PassName == u.OriginalPassName
	u.tmpl, u.subIdx, u.passIdx = tmpl, sub, pass
	u.IsMain, u.IsInvisible = p.IsMainPass, p.IsInvisible
	u.OriginalPassName = p.Name
	if renamed {
		u.PassName = p.Name
	}

	u.updatePorts(ctx, p)

	subModules := renderstate.NewSet(renderstate.LevelSubShader)
	subModules.FetchDataFromTemplate(&tmpl.SubShaders[sub].Modules)
	passModules := renderstate.NewSet(renderstate.LevelPass)
	passModules.FetchDataFromTemplate(&p.Modules)
	if u.SubShaderModules != nil {
		subModules.CopyFrom(u.SubShaderModules)
	}
	if u.PassModules != nil {
		passModules.CopyFrom(u.PassModules)
	}
	u.SubShaderModules, u.PassModules = subModules, passModules

	u.releaseProperties()
	if u.IsMain {
		u.registerProperties(ctx)
	}

	u.valid = true
	u.state = TemplateBound
	return nil
}

func (u *PassUnit) updatePorts(ctx context.Context, p *template.Pass) {
	if len(u.ports) != len(p.Ports) {
		if len(u.ports) > 0 {
			ctxlog.FromContext(ctx).Info("Port count changed, rebuilding ports.", "pass", p.Name, "old", len(u.ports), "new", len(p.Ports))
		}
		u.ports = make([]*portSlot, 0, len(p.Ports))
		for _, info := range p.Ports {
			u.ports = append(u.ports, &portSlot{
				info: info,
				port: &codegen.InputPort{Name: info.Name, DataType: info.DataType, Default: info.Default},
			})
		}
		return
	}
	for i, info := range p.Ports {
		s := u.ports[i]
		s.info = info
		s.port.Name, s.port.DataType, s.port.Default = info.Name, info.DataType, info.Default
	}
}

func (u *PassUnit) registerProperties(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, name := range u.tmpl.Properties {
		if !u.session.Uniforms.Register(u.owner, name) {
			logger.Warn("Template property is already claimed.", "property", name, "owner", u.session.Uniforms.CheckOwner(name))
			continue
		}
		u.registered = append(u.registered, name)
	}
}

func (u *PassUnit) releaseProperties() {
	for _, name := range u.registered {
		u.session.Uniforms.Release(u.owner, name)
	}
	u.registered = nil
}

// Invalidate takes the unit out of generation until a template is bound
// again.
func (u *PassUnit) Invalidate() {
	u.valid = false
	u.state = Uninitialized
}

// Close releases everything the unit holds in the session.
func (u *PassUnit) Close() {
	u.releaseProperties()
}

func (u *PassUnit) templatePass() *template.Pass {
	p, _ := u.tmpl.Pass(u.subIdx, u.passIdx)
	return p
}

// interpolatorBudget is the slot count the pass allows. A dynamic budget
// follows the shader model of the pass, then of its subshader.
func (u *PassUnit) interpolatorBudget(p *template.Pass) int {
	if !p.Interp.DynamicMax {
		return p.Interp.Max
	}
	switch {
	case u.PassModules.ShaderModel.IsValid():
		return u.PassModules.ShaderModel.InterpolatorAmount()
	case u.SubShaderModules.ShaderModel.IsValid():
		return u.SubShaderModules.ShaderModel.InterpolatorAmount()
	}
	return renderstate.InterpolatorBudget("")
}

// CollectData generates the code for every port with a fresh collector.
// Vertex ports go first so fragment code can read what they declare.
func (u *PassUnit) CollectData(ctx context.Context, resolver *LinkResolver) error {
	if !u.valid || u.tmpl == nil {
		return ErrInvalidTemplate
	}
	p := u.templatePass()
	logger := ctxlog.FromContext(ctx).With("pass", u.OriginalPassName)
	logger.Debug("Collecting pass data.")

	info := codegen.PassInfo{}
	if p.VertexCode != nil {
		info.VertexInput, info.VertexOutput = p.VertexCode.InVar, p.VertexCode.OutVar
	}
	if p.FragmentCode != nil {
		info.FragmentInput = p.FragmentCode.InVar
	}
	if p.Interp != nil {
		info.HasInterpolators = true
		info.InterpStart = p.Interp.Start
		info.InterpMax = u.interpolatorBudget(p)
		info.UsedInterpolators = p.Interp.Used
	}
	if p.VertexData != nil {
		info.HasVertexData = true
		info.VertexData = p.VertexData.Available
	}

	c := codegen.NewCollector(u.session, info)
	for _, name := range u.tmpl.Properties {
		c.SoftRegisterUniform(name)
	}
	for _, name := range u.tmpl.SubShaders[u.subIdx].Globals {
		c.SoftRegisterUniform(name)
	}
	for _, name := range p.Globals {
		c.SoftRegisterUniform(name)
	}
	u.collector = c

	slots := make([]*portSlot, len(u.ports))
	copy(slots, u.ports)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].info.Category < slots[j].info.Category })

	for _, s := range slots {
		c.SetCategory(s.info.Category)
		port := u.effectivePort(ctx, s, resolver)
		expr, err := c.GeneratePortInstructions(port)
		if err != nil {
			return fmt.Errorf("pass '%s', port '%s': %w", u.OriginalPassName, s.info.Name, err)
		}
		if port.IsConnected() && u.tmpl.SRP {
			for _, d := range srpPortDefines {
				if strings.Contains(s.info.Name, d.contains) {
					c.AddDefine(d.define)
				}
			}
		}
		c.AddPortValue(s.info.Name, expr)
	}

	u.state = DataCollected
	logger.Debug("Pass data collected.", "vertex_locals", len(c.LocalVariables(wire.Vertex)), "fragment_locals", len(c.LocalVariables(wire.Fragment)))
	return nil
}

// effectivePort is the port generation reads. An unconnected port whose
// link points at a connected port reads that port's source with its own
// type and default.
func (u *PassUnit) effectivePort(ctx context.Context, s *portSlot, resolver *LinkResolver) *codegen.InputPort {
	if s.port.IsConnected() || !s.info.HasLink() || resolver == nil {
		return s.port
	}
	target, _, ok := resolver.Resolve(ctx, s.info.LinkID)
	if !ok || !target.IsConnected() {
		return s.port
	}
	return &codegen.InputPort{Name: s.port.Name, DataType: s.port.DataType, Default: s.port.Default, Link: target.Link}
}

// FillPassData renders the pass into fragments, keyed by index marker id.
func (u *PassUnit) FillPassData(ctx context.Context, fragments map[string]string, resolver *LinkResolver) error {
	if u.state != DataCollected {
		return fmt.Errorf("pass '%s': cannot fill data in state %s", u.OriginalPassName, u.state)
	}
	p := u.templatePass()
	c := u.collector
	id := func(tag string) string { return template.PassTagID(u.subIdx, u.passIdx, tag) }

	for kind, text := range u.PassModules.RenderStates(u.PassModules.EffectiveCull(u.SubShaderModules)) {
		fragments[id(kind)] = text
	}
	if p.Modules.HasPragmaTag() {
		fragments[p.Modules.PragmaTag] = strings.Join(u.directiveLines(ctx, resolver), "\n")
	}

	globals := c.Uniforms()
	if u.tmpl.HasMarker(id(template.TagFunctions)) {
		fragments[id(template.TagFunctions)] = strings.Join(c.Functions(), "\n")
	} else {
		globals = append(append([]string(nil), globals...), c.Functions()...)
	}
	fragments[id(template.TagGlobals)] = strings.Join(globals, "\n")

	if p.Interp != nil {
		fragments[p.Interp.TagID] = strings.Join(c.Interpolators(), "\n")
	}
	if p.VertexData != nil {
		fragments[p.VertexData.TagID] = strings.Join(c.VertexData(), "\n")
	}
	fragments[id(template.TagVertexInputParams)] = c.InputParamsText(wire.Vertex)
	fragments[id(template.TagFragmentInputParams)] = c.InputParamsText(wire.Fragment)

	if p.VertexCode != nil {
		fragments[p.VertexCode.TagID] = strings.Join(c.LocalVariables(wire.Vertex), "\n")
	}
	if p.FragmentCode != nil {
		fragments[p.FragmentCode.TagID] = strings.Join(c.LocalVariables(wire.Fragment), "\n")
	}
	for _, s := range u.ports {
		if value, ok := c.PortValue(s.info.Category, s.info.Name); ok {
			fragments[s.info.TagID] = value
		}
	}
	fragments[id(template.SpanName)] = "Name " + fmt.Sprintf(template.NameFormat, u.PassName)

	u.state = PassFilled
	return nil
}

// directiveLines renders includes, then defines, then pragmas. An invisible
// pass linked to another pass renders that pass's directives.
func (u *PassUnit) directiveLines(ctx context.Context, resolver *LinkResolver) []string {
	modules := u.PassModules
	if u.IsInvisible && resolver != nil {
		if target, ok := resolver.LinkedUnit(ctx, u); ok && target != u {
			modules = target.PassModules
		}
	}
	c := u.collector
	var lines []string
	add := func(d *renderstate.Directives, generated []string) {
		if !d.IsValid() {
			return
		}
		seen := make(map[string]bool)
		for _, item := range generated {
			if !d.IsNative(item) && !seen[item] {
				seen[item] = true
				lines = append(lines, d.Kind().Format(item))
			}
		}
		for _, item := range d.Items() {
			if !d.IsNative(item) && !seen[item] {
				seen[item] = true
				lines = append(lines, d.Kind().Format(item))
			}
		}
	}
	add(modules.Includes, c.Includes())
	add(modules.Defines, c.Defines())
	add(modules.Pragmas, c.Pragmas())
	return lines
}

// FillSubShaderData renders the subshader states of the unit's subshader.
// Only the first unit of each subshader is asked to.
func (u *PassUnit) FillSubShaderData(ctx context.Context, fragments map[string]string) {
	ctxlog.FromContext(ctx).Debug("Filling subshader data.", "subshader", u.subIdx)
	id := func(tag string) string { return template.SubShaderTagID(u.subIdx, tag) }

	for kind, text := range u.SubShaderModules.RenderStates(u.SubShaderModules.EffectiveCull(nil)) {
		fragments[id(kind)] = text
	}
	if tag := u.SubShaderModules.PragmaTag; tag != "" {
		fragments[tag] = strings.Join(u.SubShaderModules.DirectiveLines(), "\n")
	}
	if u.hasLOD {
		fragments[id(template.SpanLOD)] = fmt.Sprintf("LOD %d", u.lod)
	}
}
