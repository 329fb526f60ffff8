package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/shadergen/internal/builder"
	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/suggest"
	"github.com/specialistvlad/shadergen/internal/template"
)

// Shader owns one pass unit per template pass.
type Shader struct {
	Name string

	session *codegen.Session
	tmpl    *template.Template
	units   []*PassUnit
	valid   bool
	// reason explains why the shader is invalid.
	reason string
}

func NewShader(name string, s *codegen.Session) *Shader {
	return &Shader{Name: name, session: s, reason: "no template assigned"}
}

func (sh *Shader) Template() *template.Template { return sh.tmpl }

func (sh *Shader) IsValid() bool { return sh.valid }

// AssignTemplate looks ref up as a GUID or a name and binds every unit to
// the template. A template that cannot be resolved leaves the shader
// invalid until another one is assigned.
func (sh *Shader) AssignTemplate(ctx context.Context, lib *template.Library, ref string) error {
	t, err := lib.Resolve(ref)
	if err != nil {
		sh.invalidate(err.Error())
		return fmt.Errorf("shader '%s': %w: %w", sh.Name, ErrInvalidTemplate, err)
	}
	return sh.SetTemplate(ctx, t)
}

// SetTemplate binds the shader to t.
func (sh *Shader) SetTemplate(ctx context.Context, t *template.Template) error {
	if t == nil {
		sh.invalidate("no template assigned")
		return fmt.Errorf("shader '%s': %w", sh.Name, ErrInvalidTemplate)
	}
	if sh.tmpl != nil && sh.tmpl != t {
		ctxlog.FromContext(ctx).Info("Shader template changed.", "shader", sh.Name, "old", sh.tmpl.Name, "new", t.Name)
	}
	sh.tmpl, sh.valid, sh.reason = t, true, ""
	return sh.CheckTemplateChanges(ctx)
}

func (sh *Shader) invalidate(reason string) {
	sh.valid, sh.reason = false, reason
	for _, u := range sh.units {
		u.Invalidate()
	}
}

// CheckTemplateChanges brings the units in line with the template. A pass
// layout different from the units' rebuilds every unit; otherwise units
// bound to another template are rebound in place and keep their
// connections and overrides.
func (sh *Shader) CheckTemplateChanges(ctx context.Context) error {
	if !sh.valid {
		return fmt.Errorf("shader '%s': %w: %s", sh.Name, ErrInvalidTemplate, sh.reason)
	}
	logger := ctxlog.FromContext(ctx).With("shader", sh.Name)

	if !sh.layoutMatches() {
		if len(sh.units) > 0 {
			logger.Info("Pass layout changed, rebuilding pass units.", "old", len(sh.units), "new", sh.tmpl.PassCount())
		}
		for _, u := range sh.units {
			u.Close()
		}
		sh.units = sh.units[:0]
		for _, sub := range sh.tmpl.SubShaders {
			for _, p := range sub.Passes {
				u := NewPassUnit(sh.session)
				if err := u.SetTemplate(ctx, sh.tmpl, sub.Index, p.Index); err != nil {
					return fmt.Errorf("shader '%s': %w", sh.Name, err)
				}
				sh.units = append(sh.units, u)
			}
		}
		logger.Debug("Pass units created.", "count", len(sh.units))
		return nil
	}

	for _, u := range sh.units {
		if u.tmpl == sh.tmpl && u.valid {
			continue
		}
		if err := u.SetTemplate(ctx, sh.tmpl, u.subIdx, u.passIdx); err != nil {
			return fmt.Errorf("shader '%s': %w", sh.Name, err)
		}
	}
	return nil
}

// layoutMatches reports whether every subshader of the template has as
// many passes as the units bound to it.
func (sh *Shader) layoutMatches() bool {
	if len(sh.units) != sh.tmpl.PassCount() {
		return false
	}
	perSub := make(map[int]int, len(sh.tmpl.SubShaders))
	for _, u := range sh.units {
		perSub[u.subIdx]++
	}
	if len(perSub) != len(sh.tmpl.SubShaders) {
		return false
	}
	for _, sub := range sh.tmpl.SubShaders {
		if perSub[sub.Index] != len(sub.Passes) {
			return false
		}
	}
	return true
}

// Units returns the pass units in (subshader, pass) order.
func (sh *Shader) Units() []*PassUnit {
	out := append([]*PassUnit(nil), sh.units...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].subIdx != out[j].subIdx {
			return out[i].subIdx < out[j].subIdx
		}
		return out[i].passIdx < out[j].passIdx
	})
	return out
}

// Unit returns the unit of the template pass called name.
func (sh *Shader) Unit(name string) (*PassUnit, error) {
	for _, u := range sh.Units() {
		if u.OriginalPassName == name {
			return u, nil
		}
	}
	return nil, fmt.Errorf("shader '%s' has no pass '%s'%s", sh.Name, name, suggest.Hint(name, sh.passNames()))
}

// UnitAt returns the unit bound to pass index of subshader sub.
func (sh *Shader) UnitAt(sub, index int) (*PassUnit, bool) {
	for _, u := range sh.units {
		if u.subIdx == sub && u.passIdx == index {
			return u, true
		}
	}
	return nil, false
}

// SubShaderUnit returns the first unit of subshader sub. Its subshader
// modules are the ones rendered.
func (sh *Shader) SubShaderUnit(sub int) (*PassUnit, bool) {
	for _, u := range sh.Units() {
		if u.subIdx == sub {
			return u, true
		}
	}
	return nil, false
}

// MainUnit returns the unit of the template's main pass.
func (sh *Shader) MainUnit() *PassUnit {
	for _, u := range sh.units {
		if u.IsMain {
			return u
		}
	}
	return nil
}

func (sh *Shader) passNames() []string {
	var names []string
	for _, u := range sh.Units() {
		names = append(names, u.OriginalPassName)
	}
	return names
}

// Close releases every unit.
func (sh *Shader) Close() {
	for _, u := range sh.units {
		u.Close()
	}
}

// BuildShader generates the shader text.
func (sh *Shader) BuildShader(ctx context.Context) (string, error) {
	logger := ctxlog.FromContext(ctx).With("shader", sh.Name)
	if err := sh.CheckTemplateChanges(ctx); err != nil {
		return "", err
	}
	if err := builder.CheckCycles(ctx, sh.session.Graph); err != nil {
		return "", fmt.Errorf("shader '%s': %w", sh.Name, err)
	}
	logger.Debug("Building shader.", "template", sh.tmpl.Name, "passes", len(sh.units))

	units := sh.Units()
	resolver := NewLinkResolver(units)
	fragments := make(map[string]string)
	var properties []string
	seenProperty := make(map[string]bool)

	groupFirst := 0
	for i, u := range units {
		if err := u.CollectData(ctx, resolver); err != nil {
			return "", fmt.Errorf("shader '%s': %w", sh.Name, err)
		}
		if err := u.FillPassData(ctx, fragments, resolver); err != nil {
			return "", fmt.Errorf("shader '%s': %w", sh.Name, err)
		}
		for _, p := range u.collector.Properties() {
			if !seenProperty[p] {
				seenProperty[p] = true
				properties = append(properties, p)
			}
		}
		if i == len(units)-1 || units[i+1].subIdx != u.subIdx {
			units[groupFirst].FillSubShaderData(ctx, fragments)
			groupFirst = i + 1
		}
	}

	fragments[template.TagShaderName] = fmt.Sprintf(template.NameFormat, sh.Name)
	fragments[template.TagProperties] = strings.Join(properties, "\n")

	text := sh.tmpl.NewIndex().Splice(fragments)
	logger.Info("Shader built.", "template", sh.tmpl.Name, "bytes", len(text))
	return text, nil
}
