package document

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/orchestrator"
	"github.com/specialistvlad/shadergen/internal/renderstate"
	"github.com/specialistvlad/shadergen/internal/template"
	"github.com/specialistvlad/shadergen/internal/version"
)

// Record kinds of the flat format. The kind is the first field of a record
// and may carry a namespace prefix.
const (
	// KindMultiPass is a pass unit record: one per template pass.
	KindMultiPass = "TemplateMultiPassMasterNode"
	// KindSinglePass is the deprecated single master record that held the
	// render states of subshader 0, pass 0 only.
	KindSinglePass = "TemplateMasterNode"
)

// ParseLegacy converts a flat-format document, one record per line, into a
// Document. Every record must describe the same shader.
func ParseLegacy(ctx context.Context, lib *template.Library, data string, docVersion int) (*Document, error) {
	var doc *Document
	for n, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rec, err := FromLegacy(ctx, lib, legacy.Split(line), docVersion)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		if doc == nil {
			doc = rec
			continue
		}
		if rec.TemplateGUID != doc.TemplateGUID {
			return nil, fmt.Errorf("line %d: record uses template '%s', earlier records use '%s'", n+1, rec.TemplateGUID, doc.TemplateGUID)
		}
		doc.Passes = append(doc.Passes, rec.Passes...)
	}
	if doc == nil {
		return nil, fmt.Errorf("legacy document has no records")
	}
	return doc, nil
}

// FromLegacy converts one flat record. params starts with the record kind.
// A record whose template cannot be found is invalid and returns
// orchestrator.ErrInvalidTemplate.
func FromLegacy(ctx context.Context, lib *template.Library, params []string, docVersion int) (*Document, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("empty legacy record: %w", legacy.ErrExhausted)
	}
	kind := params[0]
	if i := strings.LastIndex(kind, "."); i >= 0 {
		kind = kind[i+1:]
	}
	r := legacy.NewReader(params[1:], docVersion)
	logger := ctxlog.FromContext(ctx).With("kind", kind, "version", docVersion)
	ctx = ctxlog.WithLogger(ctx, logger)

	var (
		doc *Document
		err error
	)
	switch kind {
	case KindMultiPass:
		doc, err = fromMultiPass(ctx, lib, r)
	case KindSinglePass:
		doc, err = fromSinglePass(ctx, lib, r)
	default:
		return nil, fmt.Errorf("unknown legacy record kind '%s'", params[0])
	}
	if err != nil {
		return nil, err
	}
	if r.Remaining() > 0 {
		logger.Debug("Legacy record has unread fields.", "remaining", r.Remaining())
	}
	logger.Info("Legacy record converted.", "shader", doc.ShaderName, "template", doc.TemplateGUID)
	return doc, nil
}

func fromMultiPass(ctx context.Context, lib *template.Library, r *legacy.Reader) (*Document, error) {
	name := sanitizeShaderName(r.String())
	guid := r.String()
	sub, index := r.Int(), r.Int()
	passName := r.String()
	visiblePorts := r.Int()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("pass record header: %w", err)
	}

	t, ok := lib.Get(guid)
	if !ok {
		return nil, fmt.Errorf("shader '%s': %w: no template with guid '%s'", name, orchestrator.ErrInvalidTemplate, guid)
	}
	p, ok := t.Pass(sub, index)
	if !ok {
		return nil, fmt.Errorf("shader '%s': template '%s' has no pass %d in subshader %d", name, t.Name, index, sub)
	}
	subSet, passSet := templateSets(t, sub, p)

	logger := ctxlog.FromContext(ctx)
	if failed := subSet.ReadLegacy(ctx, r); failed > 0 {
		logger.Warn("Some subshader modules were reset.", "pass", passName, "failed", failed)
	}
	if failed := passSet.ReadLegacy(ctx, r); failed > 0 {
		logger.Warn("Some pass modules were reset.", "pass", passName, "failed", failed)
	}

	if passName == "" {
		passName = p.Name
	}
	out := newPass(passName, sub, index, visiblePorts)
	out.setModules(renderstate.LevelSubShader, setRecords(subSet, declared))
	out.setModules(renderstate.LevelPass, setRecords(passSet, declared))
	return &Document{ShaderName: name, TemplateGUID: t.GUID, FormatVersion: version.Current, Passes: []*Pass{out}}, nil
}

func fromSinglePass(ctx context.Context, lib *template.Library, r *legacy.Reader) (*Document, error) {
	name := sanitizeShaderName(r.String())
	guid := r.String()
	var templateName string
	if r.Has(version.TemplateNameField) {
		templateName = r.String()
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("master record header: %w", err)
	}

	t, ok := lib.Get(guid)
	if !ok && templateName != "" {
		t, ok = lib.GetByName(templateName)
	}
	if !ok {
		return nil, fmt.Errorf("shader '%s': %w: no template with guid '%s' or name '%s'", name, orchestrator.ErrInvalidTemplate, guid, templateName)
	}
	p, ok := t.Pass(0, 0)
	if !ok {
		return nil, fmt.Errorf("shader '%s': %w: template '%s' has no passes", name, orchestrator.ErrInvalidTemplate, t.Name)
	}
	subSet, passSet := templateSets(t, 0, p)
	subData, passData := &t.SubShaders[0].Modules, &p.Modules

	// Each section lands on the subshader when subshader 0 declares the
	// state and on pass 0 otherwise. Undeclared sections were never written.
	route := func(onSub, onPass bool) *renderstate.Set {
		switch {
		case onSub:
			return subSet
		case onPass:
			return passSet
		}
		return nil
	}
	type section struct {
		module string
		set    *renderstate.Set
		read   func(s *renderstate.Set) error
	}
	var sections []section
	if r.Has(version.SinglePassRenderState) {
		sections = append(sections,
			section{"blend", route(subData.Blend.ValidBlendMode, passData.Blend.ValidBlendMode),
				func(s *renderstate.Set) error { return s.Blend.ReadLegacyMode(r) }},
			section{"blend", route(subData.Blend.ValidBlendOp, passData.Blend.ValidBlendOp),
				func(s *renderstate.Set) error { return s.Blend.ReadLegacyOp(r) }},
			section{"cull", route(subData.Cull.DataCheck == template.DataValid, passData.Cull.DataCheck == template.DataValid),
				func(s *renderstate.Set) error { return s.Cull.ReadLegacy(r) }},
			section{"colormask", route(subData.ColorMask.DataCheck == template.DataValid, passData.ColorMask.DataCheck == template.DataValid),
				func(s *renderstate.Set) error { return s.ColorMask.ReadLegacy(r) }},
			section{"stencil", route(subData.Stencil.DataCheck == template.DataValid, passData.Stencil.DataCheck == template.DataValid),
				func(s *renderstate.Set) error { return s.Stencil.ReadLegacy(r) }},
		)
	}
	if r.Has(version.SinglePassDepth) {
		sections = append(sections,
			section{"depth", route(subData.Depth.ValidZWrite, passData.Depth.ValidZWrite),
				func(s *renderstate.Set) error { return s.Depth.ReadLegacyZWrite(r) }},
			section{"depth", route(subData.Depth.ValidZTest, passData.Depth.ValidZTest),
				func(s *renderstate.Set) error { return s.Depth.ReadLegacyZTest(r) }},
			section{"depth", route(subData.Depth.ValidOffset, passData.Depth.ValidOffset),
				func(s *renderstate.Set) error { return s.Depth.ReadLegacyOffset(r) }},
		)
	}
	if r.Has(version.SinglePassTags) {
		sections = append(sections,
			section{"tags", route(subData.Tags.DataCheck == template.DataValid, passData.Tags.DataCheck == template.DataValid),
				func(s *renderstate.Set) error { return s.Tags.ReadLegacy(r) }},
		)
	}

	logger := ctxlog.FromContext(ctx)
	read := map[*renderstate.Set]map[string]bool{subSet: {}, passSet: {}}
	for _, sec := range sections {
		if sec.set == nil {
			continue
		}
		read[sec.set][sec.module] = true
		err := sec.read(sec.set)
		if err == nil {
			err = r.Err()
		}
		if err != nil {
			logger.Warn("Failed to read module, using defaults.", "level", sec.set.Level(), "module", sec.module, "field", r.Pos(), "error", err)
			if m, ok := sec.set.Module(sec.module); ok {
				m.Reset()
			}
			r.ClearErr()
		}
	}

	// Only sections the record carried are kept; everything else follows
	// the template.
	out := newPass(p.Name, 0, 0, len(p.Ports))
	out.setModules(renderstate.LevelSubShader, setRecords(subSet, func(m renderstate.Module) bool { return read[subSet][m.Name()] }))
	out.setModules(renderstate.LevelPass, setRecords(passSet, func(m renderstate.Module) bool { return read[passSet][m.Name()] }))
	return &Document{ShaderName: name, TemplateGUID: t.GUID, FormatVersion: version.Current, Passes: []*Pass{out}}, nil
}

// templateSets returns module sets configured from what the template
// declares for pass p of subshader sub.
func templateSets(t *template.Template, sub int, p *template.Pass) (*renderstate.Set, *renderstate.Set) {
	subSet := renderstate.NewSet(renderstate.LevelSubShader)
	subSet.FetchDataFromTemplate(&t.SubShaders[sub].Modules)
	passSet := renderstate.NewSet(renderstate.LevelPass)
	passSet.FetchDataFromTemplate(&p.Modules)
	return subSet, passSet
}

// sanitizeShaderName drops characters a Shader "name" line cannot hold.
func sanitizeShaderName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
}
