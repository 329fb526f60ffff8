package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/specialistvlad/shadergen/internal/wire"
)

var (
	ErrNoShaderName       = errors.New("template has no " + TagShaderName + " marker")
	ErrNoSubShader        = errors.New("template has no SubShader block")
	ErrMultipleMainPasses = errors.New("template marks more than one main pass")
)

var (
	propertiesPattern = regexp.MustCompile(`\bProperties\b\s*{`)
	propertyName      = regexp.MustCompile(`^\s*(?:\[[^\]]*\]\s*)*(_?[A-Za-z]\w*)\s*\(`)
	tagPair           = regexp.MustCompile(`"([^"]*)"\s*=\s*"([^"]*)"`)
	globalDecl        = regexp.MustCompile(`^\s*(?:uniform\s+)?(?:float[234]?(?:x[34])?|half[234]?|fixed[234]?|int|sampler2D|samplerCUBE|sampler3D)\s+([A-Za-z_]\w*)\s*;`)
)

var (
	programBegin = []string{"CGPROGRAM", "HLSLPROGRAM", "CGINCLUDE", "HLSLINCLUDE"}
	programEnd   = []string{"ENDCG", "ENDHLSL"}
)

// Template is a parsed template document. It is immutable once parsed;
// builds work on a clone of its index.
type Template struct {
	Name string
	GUID string
	Path string
	SRP  bool
	Body string
	// DefaultShaderName is the shader name written in the body.
	DefaultShaderName string
	SubShaders        []*SubShader
	// Properties lists the names declared in the Properties block.
	Properties   []string
	IsSinglePass bool
	index        *Index
}

// NewIndex returns a fresh copy of the template's marker index.
func (t *Template) NewIndex() *Index { return t.index.Clone() }

// HasMarker reports whether the template body carries the marker id.
func (t *Template) HasMarker(id string) bool { return t.index.Has(id) }

// PassCount returns the number of passes across all subshaders.
func (t *Template) PassCount() int {
	n := 0
	for _, s := range t.SubShaders {
		n += len(s.Passes)
	}
	return n
}

// Pass returns the pass at (sub, pass).
func (t *Template) Pass(sub, pass int) (*Pass, bool) {
	if sub < 0 || sub >= len(t.SubShaders) {
		return nil, false
	}
	passes := t.SubShaders[sub].Passes
	if pass < 0 || pass >= len(passes) {
		return nil, false
	}
	return passes[pass], true
}

// MainPass returns the pass flagged as the main pass.
func (t *Template) MainPass() *Pass {
	for _, s := range t.SubShaders {
		for _, p := range s.Passes {
			if p.IsMainPass {
				return p
			}
		}
	}
	return nil
}

// FindPass returns the first pass named name.
func (t *Template) FindPass(name string) *Pass {
	for _, s := range t.SubShaders {
		for _, p := range s.Passes {
			if p.Name == name {
				return p
			}
		}
	}
	return nil
}

type region struct{ start, end int }

func (r region) contains(pos int) bool { return pos >= r.start && pos < r.end }

// Parse builds a template from its text body. The body must carry the
// shader name marker and at least one SubShader block.
func Parse(name, guid, body string) (*Template, error) {
	if !strings.Contains(body, TagShaderName) {
		return nil, ErrNoShaderName
	}
	p := &parser{body: body, idx: NewIndex(body)}
	t := &Template{Name: name, GUID: guid, Body: body, index: p.idx}

	t.DefaultShaderName = p.shaderName()
	if t.Name == "" {
		t.Name = t.DefaultShaderName
	}
	p.idx.AddFirst(TagSpec{ID: TagProperties, SearchIndentation: true})

	props, err := p.properties()
	if err != nil {
		return nil, err
	}
	t.Properties = props

	subs, err := p.blocks(subShaderPattern, region{0, len(body)})
	if err != nil {
		return nil, fmt.Errorf("failed to locate SubShader blocks: %w", err)
	}
	if len(subs) == 0 {
		return nil, ErrNoSubShader
	}
	for i, r := range subs {
		s, err := p.subShader(i, r)
		if err != nil {
			return nil, fmt.Errorf("subshader %d: %w", i, err)
		}
		t.SubShaders = append(t.SubShaders, s)
	}
	if err := assignMainPass(t); err != nil {
		return nil, err
	}
	t.IsSinglePass = len(t.SubShaders) == 1 && len(t.SubShaders[0].Passes) == 1
	for _, s := range t.SubShaders {
		if isSRP(&s.Modules) {
			t.SRP = true
		}
	}
	t.setSRP(t.SRP)
	return t, nil
}

// setSRP propagates the scriptable-pipeline flag to every level.
func (t *Template) setSRP(srp bool) {
	t.SRP = srp
	for _, s := range t.SubShaders {
		s.Modules.SRP = srp
		for _, p := range s.Passes {
			p.Modules.SRP = srp
		}
	}
}

func isSRP(m *ModulesData) bool {
	for _, tag := range m.Tags.Tags {
		if tag.Name == "RenderPipeline" && tag.Value != "" {
			return true
		}
	}
	return false
}

func assignMainPass(t *Template) error {
	var main *Pass
	for _, s := range t.SubShaders {
		for _, p := range s.Passes {
			if !p.IsMainPass {
				continue
			}
			if main != nil {
				return ErrMultipleMainPasses
			}
			main = p
		}
	}
	if main != nil {
		return nil
	}
	for _, p := range t.SubShaders[0].Passes {
		if !p.IsInvisible {
			p.IsMainPass = true
			return nil
		}
	}
	if len(t.SubShaders[0].Passes) > 0 {
		t.SubShaders[0].Passes[0].IsMainPass = true
	}
	return nil
}

type parser struct {
	body string
	idx  *Index
}

func (p *parser) indexIn(sub string, r region) int {
	if r.start >= r.end {
		return -1
	}
	i := strings.Index(p.body[r.start:r.end], sub)
	if i < 0 {
		return -1
	}
	return r.start + i
}

func (p *parser) shaderName() string {
	pos := strings.Index(p.body, TagShaderName)
	start := pos + len(TagShaderName)
	lineEnd := strings.IndexByte(p.body[start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(p.body) - start
	}
	line := p.body[start : start+lineEnd]

	var raw string
	length := len(TagShaderName)
	if end := strings.Index(line, TagFullEnd); end >= 0 {
		raw = line[:end]
		length += end + len(TagFullEnd)
	} else if q := quoted(line); q != "" {
		raw = q
		length += strings.Index(line, q) + len(q)
	}
	p.idx.AddAt(TagShaderName, pos, length, false, "", false)
	return strings.Trim(strings.TrimSpace(raw), `"`)
}

// quoted returns the leading quoted string of s including its quotes.
func quoted(s string) string {
	t := strings.TrimLeft(s, " \t")
	if !strings.HasPrefix(t, `"`) {
		return ""
	}
	end := strings.IndexByte(t[1:], '"')
	if end < 0 {
		return ""
	}
	return t[:end+2]
}

func (p *parser) properties() ([]string, error) {
	loc := propertiesPattern.FindStringIndex(p.body)
	if loc == nil {
		return nil, nil
	}
	closeAt, err := matchBrace(p.body, loc[1]-1)
	if err != nil {
		return nil, fmt.Errorf("properties block: %w", err)
	}
	var names []string
	for _, line := range strings.Split(p.body[loc[1]:closeAt], "\n") {
		if m := propertyName.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
	}
	return names, nil
}

// blocks returns the brace-matched regions opened by pattern inside r,
// skipping matches nested in an earlier block.
func (p *parser) blocks(pattern *regexp.Regexp, r region) ([]region, error) {
	var out []region
	cursor := r.start
	for cursor < r.end {
		loc := pattern.FindStringIndex(p.body[cursor:r.end])
		if loc == nil {
			break
		}
		open := cursor + loc[1] - 1
		closeAt, err := matchBrace(p.body, open)
		if err != nil {
			return nil, err
		}
		out = append(out, region{start: cursor + loc[0], end: closeAt + 1})
		cursor = closeAt + 1
	}
	return out, nil
}

// matchBrace returns the offset of the brace closing the one at open.
// Braces inside strings and comments are ignored.
func matchBrace(body string, open int) (int, error) {
	depth := 0
	for i := open; i < len(body); i++ {
		switch c := body[i]; {
		case c == '"':
			end := strings.IndexByte(body[i+1:], '"')
			if end < 0 {
				return -1, fmt.Errorf("unterminated string at offset %d", i)
			}
			i += end + 1
		case c == '/' && i+1 < len(body) && body[i+1] == '/':
			end := strings.IndexByte(body[i:], '\n')
			if end < 0 {
				return -1, fmt.Errorf("unbalanced brace at offset %d", open)
			}
			i += end
		case c == '/' && i+1 < len(body) && body[i+1] == '*':
			end := strings.Index(body[i+2:], "*/")
			if end < 0 {
				return -1, fmt.Errorf("unterminated comment at offset %d", i)
			}
			i += end + 3
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("unbalanced brace at offset %d", open)
}

// scope identifies the level a span or marker belongs to.
type scope struct {
	sub, pass int
	isPass    bool
}

func (s scope) id(tag string) string {
	if s.isPass {
		return PassTagID(s.sub, s.pass, tag)
	}
	return SubShaderTagID(s.sub, tag)
}

func (p *parser) subShader(index int, r region) (*SubShader, error) {
	s := &SubShader{Index: index, Start: r.start, End: r.end}
	passRegions, err := p.blocks(passPattern, region{start: r.start + 1, end: r.end - 1})
	if err != nil {
		return nil, fmt.Errorf("failed to locate Pass blocks: %w", err)
	}

	sc := scope{sub: index}
	st := p.scanStates(sc, r, passRegions, &s.Modules, &s.Globals)
	if st.hasLOD {
		s.LOD, s.HasLOD = st.lod, true
	}
	if pos := p.firstOutside(TagPragma, r, passRegions); pos >= 0 {
		id := sc.id(TagPragma)
		if _, ok := p.idx.AddAt(id, pos, len(TagPragma), true, "", false); ok {
			s.Modules.PragmaTag = id
		}
	}

	for i, pr := range passRegions {
		pass, err := p.pass(index, i, pr)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", i, err)
		}
		s.Passes = append(s.Passes, pass)
	}
	return s, nil
}

func (p *parser) firstOutside(tag string, r region, skip []region) int {
	cursor := r.start
	for {
		pos := p.indexIn(tag, region{cursor, r.end})
		if pos < 0 {
			return -1
		}
		inside := false
		for _, s := range skip {
			if s.contains(pos) {
				inside = true
				cursor = s.end
				break
			}
		}
		if !inside {
			return pos
		}
	}
}

func (p *parser) pass(sub, index int, r region) (*Pass, error) {
	pass := &Pass{Index: index, SubShaderIndex: sub, Start: r.start, End: r.end}
	sc := scope{sub: sub, pass: index, isPass: true}

	st := p.scanStates(sc, r, nil, &pass.Modules, &pass.Globals)
	pass.Name = st.name
	if pass.Name == "" {
		pass.Name = fmt.Sprintf("Pass %d", index)
	}

	for _, tag := range CommonTags {
		if tag.ID == TagProperties {
			continue
		}
		pos := p.indexIn(tag.ID, r)
		if pos < 0 {
			continue
		}
		id := sc.id(tag.ID)
		if _, ok := p.idx.AddAt(id, pos, len(tag.ID), tag.SearchIndentation, tag.CustomIndentation, false); ok && tag.ID == TagPragma {
			pass.Modules.PragmaTag = id
		}
	}
	if pos := p.indexIn(TagMainPass, r); pos >= 0 {
		pass.IsMainPass = true
		p.idx.AddAt(sc.id(TagMainPass), pos, len(TagMainPass), false, "", false)
	}
	if pos := p.indexIn(TagHidePass, r); pos >= 0 {
		pass.IsInvisible = true
		p.idx.AddAt(sc.id(TagHidePass), pos, len(TagHidePass), false, "", false)
	}

	if err := p.ports(pass, sc, r); err != nil {
		return nil, err
	}
	pass.VertexCode = p.codeTag(TagVertexCodeBegin, sc, r)
	pass.FragmentCode = p.codeTag(TagFragmentCodeBegin, sc, r)
	interp, err := p.interp(sc, r)
	if err != nil {
		return nil, err
	}
	pass.Interp = interp
	pass.VertexData = p.vertexData(sc, r)
	return pass, nil
}

// sectionEnd returns the end of a "/*tag...*/" marker starting at pos,
// including a trailing newline, and the header text between tag and "*/".
func (p *parser) sectionEnd(tag string, pos int, r region) (string, int, bool) {
	hdrStart := pos + len(tag)
	end := p.indexIn(TagEndSection, region{hdrStart, r.end})
	if end < 0 {
		return "", 0, false
	}
	header := p.body[hdrStart:end]
	end += len(TagEndSection)
	if end < len(p.body) && p.body[end] == '\n' {
		end++
	}
	return header, end, true
}

func (p *parser) codeTag(tag string, sc scope, r region) *CodeTag {
	pos := p.indexIn(tag, r)
	if pos < 0 {
		return nil
	}
	header, end, ok := p.sectionEnd(tag, pos, r)
	if !ok {
		return nil
	}
	id := sc.id(tag)
	if _, ok := p.idx.AddAt(id, pos, end-pos, true, "", false); !ok {
		return nil
	}
	ct := &CodeTag{TagID: id}
	for i, part := range strings.Split(header, ";") {
		name, typ, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch i {
		case 0:
			ct.InVar, ct.InType = name, typ
		case 1:
			ct.OutVar, ct.OutType = name, typ
		}
	}
	return ct
}

func (p *parser) interp(sc scope, r region) (*InterpData, error) {
	pos := p.indexIn(TagInterpolatorBegin, r)
	if pos < 0 {
		return nil, nil
	}
	header, end, ok := p.sectionEnd(TagInterpolatorBegin, pos, r)
	if !ok {
		return nil, fmt.Errorf("unterminated %s marker", TagInterpolatorBegin)
	}
	bounds, rest, _ := strings.Cut(header, ")")
	startStr, maxStr, _ := strings.Cut(bounds, ",")
	data := &InterpData{TagID: sc.id(TagInterpolatorBegin)}
	var err error
	if data.Start, err = strconv.Atoi(strings.TrimSpace(startStr)); err != nil {
		return nil, fmt.Errorf("invalid interpolator start %q: %w", startStr, err)
	}
	if maxStr = strings.TrimSpace(maxStr); maxStr == "" {
		data.DynamicMax = true
	} else if data.Max, err = strconv.Atoi(maxStr); err != nil {
		return nil, fmt.Errorf("invalid interpolator max %q: %w", maxStr, err)
	}
	rest = strings.TrimPrefix(strings.TrimSpace(rest), ":")
	for _, item := range strings.Split(rest, ";") {
		if name, _, _ := strings.Cut(strings.TrimSpace(item), "="); name != "" {
			data.Used = append(data.Used, name)
		}
	}
	p.idx.AddAt(data.TagID, pos, end-pos, true, "", false)
	return data, nil
}

func (p *parser) vertexData(sc scope, r region) *VertexDataTag {
	pos := p.indexIn(TagVertexDataBegin, r)
	if pos < 0 {
		return nil
	}
	header, end, ok := p.sectionEnd(TagVertexDataBegin, pos, r)
	if !ok {
		return nil
	}
	vd := &VertexDataTag{TagID: sc.id(TagVertexDataBegin), Available: map[string]string{}}
	for _, item := range strings.Split(header, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(item), "=")
		if name != "" {
			vd.Available[name] = value
		}
	}
	p.idx.AddAt(vd.TagID, pos, end-pos, true, "", false)
	return vd
}

func (p *parser) ports(pass *Pass, sc scope, r region) error {
	kinds := []struct {
		tag string
		cat wire.Category
	}{
		{TagVertexOutBegin, wire.Vertex},
		{TagFragmentOutBegin, wire.Fragment},
	}
	seen := map[string]bool{}
	for _, kind := range kinds {
		cursor := r.start
		for {
			pos := p.indexIn(kind.tag, region{cursor, r.end})
			if pos < 0 {
				break
			}
			hdrStart := pos + len(kind.tag)
			hdrEnd := p.indexIn(TagEndSection, region{hdrStart, r.end})
			if hdrEnd < 0 {
				return fmt.Errorf("unterminated port marker at offset %d", pos)
			}
			defStart := hdrEnd + len(TagEndSection)
			endTag := p.indexIn(TagFullEnd, region{defStart, r.end})
			if endTag < 0 {
				return fmt.Errorf("port marker at offset %d has no %s", pos, TagFullEnd)
			}
			spanEnd := endTag + len(TagFullEnd)

			port, err := parsePort(p.body[hdrStart:hdrEnd], len(pass.Ports))
			if err != nil {
				return err
			}
			if seen[port.Name] {
				return fmt.Errorf("duplicate port %q", port.Name)
			}
			seen[port.Name] = true
			port.Category = kind.cat
			port.Default = strings.TrimSpace(p.body[defStart:endTag])
			port.TagID = sc.id("port:" + port.Name)
			p.idx.AddAt(port.TagID, pos, spanEnd-pos, false, "", false)
			pass.Ports = append(pass.Ports, port)
			cursor = spanEnd
		}
	}
	sort.SliceStable(pass.Ports, func(i, j int) bool { return pass.Ports[i].OrderID < pass.Ports[j].OrderID })
	return nil
}

// parsePort reads "Name;Type[;UniqueId[;OrderId[;Link]]]".
func parsePort(header string, position int) (PortInfo, error) {
	fields := strings.Split(header, ";")
	if len(fields) < 2 {
		return PortInfo{}, fmt.Errorf("port marker %q needs at least a name and a type", header)
	}
	port := PortInfo{Name: strings.TrimSpace(fields[0]), UniqueID: position, OrderID: position}
	dt, err := wire.ParseDataType(fields[1])
	if err != nil {
		return PortInfo{}, fmt.Errorf("port %q: %w", port.Name, err)
	}
	port.DataType = dt
	if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
		if port.UniqueID, err = strconv.Atoi(strings.TrimSpace(fields[2])); err != nil {
			return PortInfo{}, fmt.Errorf("port %q: invalid unique id: %w", port.Name, err)
		}
	}
	if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
		if port.OrderID, err = strconv.Atoi(strings.TrimSpace(fields[3])); err != nil {
			return PortInfo{}, fmt.Errorf("port %q: invalid order id: %w", port.Name, err)
		}
	}
	if len(fields) > 4 {
		port.LinkID = strings.TrimSpace(fields[4])
	}
	return port, nil
}
