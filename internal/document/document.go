package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/orchestrator"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/renderstate"
	"github.com/specialistvlad/shadergen/internal/version"
	"github.com/zclconf/go-cty/cty"
)

// Document is the persisted state of one shader.
type Document struct {
	ShaderName    string
	TemplateGUID  string
	FormatVersion int
	Passes        []*Pass
}

// Pass is the persisted state of one pass unit.
type Pass struct {
	// Name is the name rendered for the pass, which may differ from the
	// template's.
	Name         string
	SubShader    int
	Index        int
	VisiblePorts int
	// Modules holds module records keyed by level, then by module name.
	Modules map[string]map[string]record.Fields
}

func newPass(name string, sub, index, visiblePorts int) *Pass {
	return &Pass{
		Name:         name,
		SubShader:    sub,
		Index:        index,
		VisiblePorts: visiblePorts,
		Modules:      make(map[string]map[string]record.Fields),
	}
}

func (p *Pass) setModules(level string, records map[string]record.Fields) {
	if len(records) > 0 {
		p.Modules[level] = records
	}
}

// Capture records the state of sh. Only modules the user changed are kept.
// Subshader modules are taken from the unit that renders them.
func Capture(sh *orchestrator.Shader) (*Document, error) {
	if !sh.IsValid() {
		return nil, fmt.Errorf("shader '%s': %w", sh.Name, orchestrator.ErrInvalidTemplate)
	}
	doc := &Document{
		ShaderName:    sh.Name,
		TemplateGUID:  sh.Template().GUID,
		FormatVersion: version.Current,
	}
	for _, u := range sh.Units() {
		p := newPass(u.PassName, u.SubShaderIndex(), u.PassIndex(), len(u.Ports()))
		if first, ok := sh.SubShaderUnit(u.SubShaderIndex()); ok && first == u {
			p.setModules(renderstate.LevelSubShader, setRecords(u.SubShaderModules, dirty))
		}
		p.setModules(renderstate.LevelPass, setRecords(u.PassModules, dirty))
		doc.Passes = append(doc.Passes, p)
	}
	return doc, nil
}

func dirty(m renderstate.Module) bool { return m.IsDirty() }

func declared(m renderstate.Module) bool { return m.IsValid() }

// setRecords encodes the modules of s that keep selects.
func setRecords(s *renderstate.Set, keep func(renderstate.Module) bool) map[string]record.Fields {
	out := make(map[string]record.Fields)
	for _, m := range s.Modules() {
		if !keep(m) {
			continue
		}
		// Encode output always parses back.
		f, err := record.Decode(record.Encode(m.EncodeRecord), m.Name())
		if err != nil {
			panic(fmt.Sprintf("document: module '%s' wrote an unreadable record: %v", m.Name(), err))
		}
		out[m.Name()] = f
	}
	return out
}

// Encode renders the document in the tagged format.
func (d *Document) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	shader := root.AppendNewBlock("shader", []string{d.ShaderName}).Body()
	shader.SetAttributeValue("template_guid", cty.StringVal(d.TemplateGUID))
	shader.SetAttributeValue("format_version", cty.NumberIntVal(int64(d.FormatVersion)))

	for _, p := range d.Passes {
		root.AppendNewline()
		body := root.AppendNewBlock("pass", []string{p.Name}).Body()
		body.SetAttributeValue("subshader", cty.NumberIntVal(int64(p.SubShader)))
		body.SetAttributeValue("index", cty.NumberIntVal(int64(p.Index)))
		body.SetAttributeValue("visible_ports", cty.NumberIntVal(int64(p.VisiblePorts)))
		for _, level := range []string{renderstate.LevelSubShader, renderstate.LevelPass} {
			records := p.Modules[level]
			for _, name := range moduleOrder(records) {
				block := body.AppendNewBlock(renderstate.ModuleBlock, []string{level, name})
				records[name].WriteTo(block.Body())
			}
		}
	}
	return f.Bytes()
}

// moduleOrder lists the names in records in persistence order. Names no
// set knows sort after the rest.
func moduleOrder(records map[string]record.Fields) []string {
	rank := make(map[string]int)
	for i, m := range renderstate.NewSet(renderstate.LevelPass).Modules() {
		rank[m.Name()] = i
	}
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iok := rank[names[i]]
		rj, jok := rank[names[j]]
		if iok != jok {
			return iok
		}
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

type fileRoot struct {
	Shader *shaderBlock `hcl:"shader,block"`
	Passes []*passBlock `hcl:"pass,block"`
}

type shaderBlock struct {
	Name          string `hcl:"name,label"`
	TemplateGUID  string `hcl:"template_guid"`
	FormatVersion int    `hcl:"format_version,optional"`
}

type passBlock struct {
	Name         string         `hcl:"name,label"`
	SubShader    int            `hcl:"subshader"`
	Index        int            `hcl:"index"`
	VisiblePorts int            `hcl:"visible_ports,optional"`
	Modules      []*moduleBlock `hcl:"module,block"`
}

type moduleBlock struct {
	Level string   `hcl:"level,label"`
	Name  string   `hcl:"name,label"`
	Body  hcl.Body `hcl:",remain"`
}

// Decode parses a document in the tagged format.
func Decode(src []byte, filename string) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode document %s: %w", filename, diags)
	}

	if root.Shader == nil {
		return nil, fmt.Errorf("document %s has no shader block", filename)
	}
	doc := &Document{
		ShaderName:    root.Shader.Name,
		TemplateGUID:  root.Shader.TemplateGUID,
		FormatVersion: root.Shader.FormatVersion,
	}
	if doc.FormatVersion == 0 {
		doc.FormatVersion = version.Current
	}
	for _, pb := range root.Passes {
		p := newPass(pb.Name, pb.SubShader, pb.Index, pb.VisiblePorts)
		for _, mb := range pb.Modules {
			if p.Modules[mb.Level] == nil {
				p.Modules[mb.Level] = make(map[string]record.Fields)
			}
			if _, dup := p.Modules[mb.Level][mb.Name]; dup {
				return nil, fmt.Errorf("document %s: pass '%s' has two %s '%s' modules", filename, pb.Name, mb.Level, mb.Name)
			}
			fields, diags := record.FromBody(mb.Body)
			if diags.HasErrors() {
				return nil, fmt.Errorf("document %s: pass '%s', %s module '%s': %w", filename, pb.Name, mb.Level, mb.Name, diags)
			}
			p.Modules[mb.Level][mb.Name] = fields
		}
		doc.Passes = append(doc.Passes, p)
	}
	return doc, nil
}

// Apply restores the document onto sh, which must already be bound to a
// template. Passes the template no longer has are skipped with a warning,
// and so are modules that fail to load.
func (d *Document) Apply(ctx context.Context, sh *orchestrator.Shader) error {
	logger := ctxlog.FromContext(ctx).With("shader", sh.Name)
	if !sh.IsValid() {
		return fmt.Errorf("shader '%s': %w", sh.Name, orchestrator.ErrInvalidTemplate)
	}
	if guid := sh.Template().GUID; guid != d.TemplateGUID {
		logger.Warn("Document was saved for another template.", "document_template", d.TemplateGUID, "template", guid)
	}
	if d.FormatVersion > version.Current {
		logger.Warn("Document was written by a newer version.", "document_version", d.FormatVersion, "version", version.Current)
	}

	for _, p := range d.Passes {
		u, ok := sh.UnitAt(p.SubShader, p.Index)
		if !ok {
			logger.Warn("Document pass not found in template, skipping.", "pass", p.Name, "subshader", p.SubShader, "index", p.Index)
			continue
		}
		if p.Name != "" {
			u.PassName = p.Name
		}
		if p.VisiblePorts > len(u.Ports()) {
			logger.Debug("Document lists more ports than the pass exposes.", "pass", p.Name, "visible_ports", p.VisiblePorts, "ports", len(u.Ports()))
		}
		for level, records := range p.Modules {
			switch level {
			case renderstate.LevelPass:
				u.PassModules.DecodeRecords(ctx, records)
			case renderstate.LevelSubShader:
				first, ok := sh.SubShaderUnit(p.SubShader)
				if !ok {
					first = u
				}
				first.SubShaderModules.DecodeRecords(ctx, records)
			default:
				logger.Warn("Ignoring modules of unknown level.", "pass", p.Name, "level", level)
			}
		}
	}
	logger.Debug("Document applied.", "passes", len(d.Passes))
	return nil
}
