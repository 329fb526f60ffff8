package renderstate

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/suggest"
	"github.com/specialistvlad/shadergen/internal/template"
)

// Levels a Set can belong to.
const (
	LevelSubShader = "subshader"
	LevelPass      = "pass"
)

// ModuleBlock is the block type module records are written under.
const ModuleBlock = "module"

// Set is every module of one level, either a subshader or a pass.
type Set struct {
	level string

	Blend       *Blend
	Cull        *Cull
	ColorMask   *ColorMask
	Stencil     *Stencil
	Depth       *Depth
	Tags        *Tags
	ShaderModel *ShaderModel
	Defines     *Directives
	Pragmas     *Directives
	Includes    *Directives

	// HasValidData is set when the template declares any state at this level.
	HasValidData bool
	// PragmaTag is the index id directives render at.
	PragmaTag string
}

func NewSet(level string) *Set {
	return &Set{
		level:       level,
		Blend:       NewBlend(),
		Cull:        NewCull(),
		ColorMask:   NewColorMask(),
		Stencil:     NewStencil(),
		Depth:       NewDepth(),
		Tags:        NewTags(),
		ShaderModel: NewShaderModel(),
		Defines:     NewDirectives(DefineDirective),
		Pragmas:     NewDirectives(PragmaDirective),
		Includes:    NewDirectives(IncludeDirective),
	}
}

func (s *Set) Level() string { return s.level }

// Modules returns the modules in persistence order.
func (s *Set) Modules() []Module {
	return []Module{
		s.Blend, s.Cull, s.ColorMask, s.Stencil, s.Depth,
		s.Tags, s.ShaderModel, s.Defines, s.Pragmas, s.Includes,
	}
}

// Module returns the module called name.
func (s *Set) Module(name string) (Module, bool) {
	for _, m := range s.Modules() {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// FetchDataFromTemplate configures every module from what the template
// declares at this level.
func (s *Set) FetchDataFromTemplate(d *template.ModulesData) {
	s.PragmaTag = d.PragmaTag
	s.Pragmas.ConfigureFromTemplate(d.HasPragmaTag(), d.Directives.Pragmas)
	s.Includes.ConfigureFromTemplate(d.HasPragmaTag(), d.Directives.Includes)
	s.Defines.ConfigureFromTemplate(d.HasPragmaTag(), d.Directives.Defines)

	s.Blend.ConfigureFromTemplate(d.Blend)
	s.Cull.ConfigureFromTemplate(d.Cull)
	s.ColorMask.ConfigureFromTemplate(d.ColorMask)
	s.Stencil.ConfigureFromTemplate(d.Stencil)
	s.Depth.ConfigureFromTemplate(d.Depth)
	s.Tags.ConfigureFromTemplate(d.Tags)
	s.ShaderModel.ConfigureFromTemplate(d.ShaderModel)

	s.HasValidData = false
	for _, m := range s.Modules() {
		if m.IsValid() {
			s.HasValidData = true
			break
		}
	}
}

// CopyFrom copies the render states the user changed in o. Directive
// items always carry over.
func (s *Set) CopyFrom(o *Set) {
	s.Defines.CopyFrom(o.Defines)
	s.Pragmas.CopyFrom(o.Pragmas)
	s.Includes.CopyFrom(o.Includes)
	if o.Blend.IsDirty() {
		s.Blend.CopyFrom(o.Blend)
	}
	if o.Cull.IsDirty() {
		s.Cull.CopyFrom(o.Cull)
	}
	if o.ColorMask.IsDirty() {
		s.ColorMask.CopyFrom(o.ColorMask)
	}
	if o.Stencil.IsDirty() {
		s.Stencil.CopyFrom(o.Stencil)
	}
	if o.Depth.IsDirty() {
		s.Depth.CopyFrom(o.Depth)
	}
	if o.Tags.IsDirty() {
		s.Tags.CopyFrom(o.Tags)
	}
	if o.ShaderModel.IsDirty() {
		s.ShaderModel.CopyFrom(o.ShaderModel)
	}
}

// IsDirty reports whether any module was changed since the last ClearDirty.
func (s *Set) IsDirty() bool {
	for _, m := range s.Modules() {
		if m.IsDirty() {
			return true
		}
	}
	return false
}

// SetDirty clears every module's flag when dirty is false, and marks every
// module otherwise.
func (s *Set) SetDirty(dirty bool) {
	for _, m := range s.Modules() {
		if dirty {
			m.(interface{ markDirty() }).markDirty()
			continue
		}
		m.ClearDirty()
	}
}

// EffectiveCull is the cull mode stencil output depends on: this level's
// cull when declared, then parent's, then Back.
func (s *Set) EffectiveCull(parent *Set) string {
	if s.Cull.IsValid() {
		return s.Cull.Mode()
	}
	if parent != nil && parent.Cull.IsValid() {
		return parent.Cull.Mode()
	}
	return CullBack
}

// RenderStates renders every declared state keyed by its span kind.
func (s *Set) RenderStates(cull string) map[string]string {
	out := make(map[string]string)
	if s.Blend.ValidBlendMode() {
		out[template.SpanBlendMode] = s.Blend.BlendFactorLine()
	}
	if s.Blend.ValidBlendOp() {
		out[template.SpanBlendOp] = s.Blend.BlendOpLine()
	}
	if s.Cull.IsValid() {
		out[template.SpanCull] = s.Cull.GenerateShaderData()
	}
	if s.ColorMask.IsValid() {
		out[template.SpanColorMask] = s.ColorMask.GenerateShaderData()
	}
	if s.Depth.ValidZWrite() {
		out[template.SpanZWrite] = s.Depth.ZWriteLine()
	}
	if s.Depth.ValidZTest() {
		out[template.SpanZTest] = s.Depth.ZTestLine()
	}
	if s.Depth.ValidOffset() {
		out[template.SpanOffset] = s.Depth.OffsetLine()
	}
	if s.Stencil.IsValid() {
		out[template.SpanStencil] = s.Stencil.GenerateShaderData(cull)
	}
	if s.Tags.IsValid() {
		out[template.SpanTags] = s.Tags.GenerateShaderData()
	}
	if s.ShaderModel.IsValid() {
		out[template.SpanShaderModel] = s.ShaderModel.GenerateShaderData()
	}
	return out
}

// DirectiveLines returns the user directives in render order: includes,
// then defines, then pragmas.
func (s *Set) DirectiveLines() []string {
	var lines []string
	for _, d := range []*Directives{s.Includes, s.Defines, s.Pragmas} {
		if d.IsValid() {
			lines = append(lines, d.Lines()...)
		}
	}
	return lines
}

// EncodeRecords appends one module block per module to body.
func (s *Set) EncodeRecords(body *hclwrite.Body) {
	for _, m := range s.Modules() {
		block := body.AppendNewBlock(ModuleBlock, []string{s.level, m.Name()})
		m.EncodeRecord(record.NewWriter(block.Body()))
	}
}

// DecodeRecords applies records keyed by module name. Each module decodes
// on its own: a failing one is logged and reset, and the rest still load.
// Declared modules that load are marked dirty so a later template switch
// keeps them.
func (s *Set) DecodeRecords(ctx context.Context, records map[string]record.Fields) {
	logger := ctxlog.FromContext(ctx)
	for name := range records {
		if _, ok := s.Module(name); !ok {
			logger.Warn("Ignoring record for unknown module.", "level", s.level, "module", name)
		}
	}
	for _, m := range s.Modules() {
		f, ok := records[m.Name()]
		if !ok {
			continue
		}
		if err := m.DecodeRecord(f); err != nil {
			logger.Warn("Failed to read module, using defaults.", "level", s.level, "module", m.Name(), "error", err)
			m.Reset()
			continue
		}
		if m.IsValid() {
			m.(interface{ markDirty() }).markDirty()
		}
	}
}

// ApplyOverrides decodes user overrides keyed by module name and marks every
// decoded module dirty. Unlike DecodeRecords the first failure is returned.
func (s *Set) ApplyOverrides(records map[string]record.Fields) error {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m, ok := s.Module(name)
		if !ok {
			return fmt.Errorf("unknown %s module '%s'%s", s.level, name, suggest.Hint(name, s.moduleNames()))
		}
		if err := m.DecodeRecord(records[name]); err != nil {
			return fmt.Errorf("%s module '%s': %w", s.level, name, err)
		}
		m.(interface{ markDirty() }).markDirty()
	}
	return nil
}

func (s *Set) moduleNames() []string {
	var names []string
	for _, m := range s.Modules() {
		names = append(names, m.Name())
	}
	return names
}

// WriteLegacy writes every module in the legacy field layout.
func (s *Set) WriteLegacy(w *legacy.Writer) {
	for _, m := range s.Modules() {
		m.WriteLegacy(w)
	}
}

// ReadLegacy reads every module from the legacy field stream. A module that
// fails is logged and reset and reading continues with the next one. It
// returns the number of modules that failed.
func (s *Set) ReadLegacy(ctx context.Context, r *legacy.Reader) int {
	logger := ctxlog.FromContext(ctx)
	failed := 0
	for _, m := range s.Modules() {
		err := m.ReadLegacy(r)
		if err == nil {
			err = r.Err()
		}
		if err != nil {
			logger.Warn("Failed to read module, using defaults.", "level", s.level, "module", m.Name(), "field", r.Pos(), "error", err)
			m.Reset()
			r.ClearErr()
			failed++
		}
	}
	return failed
}
