package template

import (
	"strconv"
	"strings"
)

type scanResult struct {
	lod    int
	hasLOD bool
	name   string
}

// scanStates reads the render-state lines of r into m and records a span
// for each of them. Program blocks are scanned for directives and global
// declarations instead.
func (p *parser) scanStates(sc scope, r region, skip []region, m *ModulesData, globals *[]string) scanResult {
	var res scanResult
	inCode := false
	depth := 0
	pos := r.start
	for pos < r.end {
		if s, ok := within(skip, pos); ok {
			pos = s.end
			continue
		}
		lineEnd := strings.IndexByte(p.body[pos:r.end], '\n')
		next := r.end
		if lineEnd < 0 {
			lineEnd = r.end
		} else {
			lineEnd += pos
			next = lineEnd + 1
		}
		line := p.body[pos:lineEnd]
		trimmed := strings.TrimSpace(line)
		start := pos + len(line) - len(strings.TrimLeft(line, " \t"))
		length := len(strings.TrimRight(p.body[start:lineEnd], " \t\r"))
		pos = next

		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		first := strings.Fields(trimmed)[0]
		if hasToken(programBegin, first) {
			inCode, depth = true, 0
			continue
		}
		if hasToken(programEnd, first) {
			inCode = false
			continue
		}
		if inCode {
			p.codeLine(sc, trimmed, start, length, depth, m, globals)
			depth += strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
			continue
		}

		keyword := leadingWord(trimmed)
		rest := strings.TrimSpace(trimmed[len(keyword):])
		switch strings.ToLower(keyword) {
		case "blend":
			if parseBlend(rest, &m.Blend) {
				p.span(sc, SpanBlendMode, start, length)
			}
		case "blendop":
			if parseBlendOp(rest, &m.Blend) {
				p.span(sc, SpanBlendOp, start, length)
			}
		case "cull":
			if m.Cull.DataCheck == DataValid {
				continue
			}
			if unreadable(rest) {
				m.Cull.DataCheck = DataUnreadable
				continue
			}
			m.Cull = CullData{DataCheck: DataValid, Mode: firstField(rest)}
			p.span(sc, SpanCull, start, length)
		case "colormask":
			if m.ColorMask.DataCheck == DataValid {
				continue
			}
			if unreadable(rest) {
				m.ColorMask.DataCheck = DataUnreadable
				continue
			}
			m.ColorMask = ColorMaskData{DataCheck: DataValid, Mask: parseColorMask(firstField(rest))}
			p.span(sc, SpanColorMask, start, length)
		case "zwrite":
			if parseDepthPart(rest, &m.Depth, &m.Depth.ValidZWrite, &m.Depth.ZWriteMode) {
				p.span(sc, SpanZWrite, start, length)
			}
		case "ztest":
			if parseDepthPart(rest, &m.Depth, &m.Depth.ValidZTest, &m.Depth.ZTestMode) {
				p.span(sc, SpanZTest, start, length)
			}
		case "offset":
			if parseOffset(rest, &m.Depth) {
				p.span(sc, SpanOffset, start, length)
			}
		case "tags":
			end, ok := p.blockEnd(start, r.end)
			if !ok {
				continue
			}
			if m.Tags.DataCheck != DataValid {
				m.Tags = TagsData{DataCheck: DataValid}
				for _, pair := range tagPair.FindAllStringSubmatch(p.body[start:end], -1) {
					m.Tags.Tags = append(m.Tags.Tags, Tag{Name: pair[1], Value: pair[2]})
				}
				p.span(sc, SpanTags, start, end-start)
			}
			pos = lineAfter(p.body, end, r.end)
		case "stencil":
			end, ok := p.blockEnd(start, r.end)
			if !ok {
				continue
			}
			if m.Stencil.DataCheck != DataValid {
				m.Stencil = parseStencil(p.body[start:end])
				if m.Stencil.DataCheck == DataValid {
					p.span(sc, SpanStencil, start, end-start)
				}
			}
			pos = lineAfter(p.body, end, r.end)
		case "lod":
			if sc.isPass || res.hasLOD {
				continue
			}
			if v, err := strconv.Atoi(firstField(rest)); err == nil {
				res.lod, res.hasLOD = v, true
				p.span(sc, SpanLOD, start, length)
			}
		case "name":
			if !sc.isPass || res.name != "" {
				continue
			}
			if q := quoted(rest); q != "" {
				res.name = strings.Trim(q, `"`)
				p.span(sc, SpanName, start, length)
			}
		}
	}
	m.Blend.DataCheck = combine(m.Blend.DataCheck, m.Blend.ValidBlendMode || m.Blend.ValidBlendOp)
	m.Depth.DataCheck = combine(m.Depth.DataCheck, m.Depth.ValidZWrite || m.Depth.ValidZTest || m.Depth.ValidOffset)
	return res
}

func (p *parser) codeLine(sc scope, trimmed string, start, length, depth int, m *ModulesData, globals *[]string) {
	switch {
	case strings.HasPrefix(trimmed, "#pragma"):
		rest := strings.TrimSpace(trimmed[len("#pragma"):])
		if target, ok := strings.CutPrefix(rest, "target"); ok {
			if m.ShaderModel.DataCheck != DataValid {
				m.ShaderModel = ShaderModelData{DataCheck: DataValid, Value: strings.TrimSpace(target)}
				p.span(sc, SpanShaderModel, start, length)
			}
			return
		}
		m.Directives.Pragmas = append(m.Directives.Pragmas, rest)
	case strings.HasPrefix(trimmed, "#include"):
		rest := strings.TrimSpace(trimmed[len("#include"):])
		m.Directives.Includes = append(m.Directives.Includes, strings.Trim(rest, `"<>`))
	case strings.HasPrefix(trimmed, "#define"):
		m.Directives.Defines = append(m.Directives.Defines, strings.TrimSpace(trimmed[len("#define"):]))
	case depth == 0:
		if g := globalDecl.FindStringSubmatch(trimmed); g != nil {
			*globals = append(*globals, g[1])
		}
	}
}

func (p *parser) span(sc scope, kind string, start, length int) {
	p.idx.AddAt(sc.id(kind), start, length, true, "", true)
}

// blockEnd returns the offset just past the brace block that opens on or
// after start.
func (p *parser) blockEnd(start, limit int) (int, bool) {
	open := strings.IndexByte(p.body[start:limit], '{')
	if open < 0 {
		return 0, false
	}
	closeAt, err := matchBrace(p.body, start+open)
	if err != nil || closeAt >= limit {
		return 0, false
	}
	return closeAt + 1, true
}

func lineAfter(body string, pos, limit int) int {
	nl := strings.IndexByte(body[pos:limit], '\n')
	if nl < 0 {
		return limit
	}
	return pos + nl + 1
}

func within(skip []region, pos int) (region, bool) {
	for _, s := range skip {
		if s.contains(pos) {
			return s, true
		}
	}
	return region{}, false
}

func hasToken(list []string, tok string) bool {
	for _, t := range list {
		if t == tok {
			return true
		}
	}
	return false
}

func leadingWord(s string) string {
	for i, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return s[:i]
		}
	}
	return s
}

func firstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func unreadable(s string) bool { return strings.Contains(s, "[") }

func combine(current DataCheck, valid bool) DataCheck {
	if valid {
		return DataValid
	}
	return current
}

// splitArgs splits "A B , C D" into its comma separated groups of fields.
func splitArgs(s string) [][]string {
	var out [][]string
	for _, part := range strings.Split(s, ",") {
		out = append(out, strings.Fields(part))
	}
	return out
}

// dropTarget strips a leading render target index.
func dropTarget(fields []string, want int) []string {
	if len(fields) == want+1 {
		if _, err := strconv.Atoi(fields[0]); err == nil {
			return fields[1:]
		}
	}
	return fields
}

func parseBlend(rest string, d *BlendData) bool {
	if d.ValidBlendMode {
		return false
	}
	if unreadable(rest) {
		d.DataCheck = DataUnreadable
		return false
	}
	args := splitArgs(rest)
	rgb := args[0]
	if len(rgb) == 1 && strings.EqualFold(rgb[0], "Off") {
		d.ValidBlendMode, d.BlendModeOff = true, true
		return true
	}
	rgb = dropTarget(rgb, 2)
	if len(rgb) != 2 {
		return false
	}
	d.ValidBlendMode = true
	d.SourceFactorRGB, d.DestFactorRGB = rgb[0], rgb[1]
	if len(args) > 1 && len(args[1]) == 2 {
		d.SeparateBlendFactors = true
		d.SourceFactorAlpha, d.DestFactorAlpha = args[1][0], args[1][1]
	}
	return true
}

func parseBlendOp(rest string, d *BlendData) bool {
	if d.ValidBlendOp {
		return false
	}
	if unreadable(rest) {
		d.DataCheck = DataUnreadable
		return false
	}
	args := splitArgs(rest)
	rgb := dropTarget(args[0], 1)
	if len(rgb) != 1 {
		return false
	}
	d.ValidBlendOp = true
	d.BlendOpRGB = rgb[0]
	if len(args) > 1 && len(args[1]) == 1 {
		d.BlendOpAlpha = args[1][0]
	}
	return true
}

func parseColorMask(v string) [4]bool {
	var mask [4]bool
	if v == "0" {
		return mask
	}
	for i, c := range "RGBA" {
		mask[i] = strings.ContainsRune(strings.ToUpper(v), c)
	}
	return mask
}

func parseDepthPart(rest string, d *DepthData, valid *bool, value *string) bool {
	if *valid {
		return false
	}
	if unreadable(rest) {
		d.DataCheck = DataUnreadable
		return false
	}
	*valid, *value = true, firstField(rest)
	return true
}

func parseOffset(rest string, d *DepthData) bool {
	if d.ValidOffset {
		return false
	}
	if unreadable(rest) {
		d.DataCheck = DataUnreadable
		return false
	}
	factor, units, ok := strings.Cut(rest, ",")
	if !ok {
		return false
	}
	f, err1 := strconv.ParseFloat(strings.TrimSpace(factor), 64)
	u, err2 := strconv.ParseFloat(strings.TrimSpace(units), 64)
	if err1 != nil || err2 != nil {
		return false
	}
	d.ValidOffset, d.OffsetFactor, d.OffsetUnits = true, f, u
	return true
}

func parseStencil(block string) StencilData {
	d := StencilData{DataCheck: DataValid, ReadMask: 255, WriteMask: 255}
	open := strings.IndexByte(block, '{')
	inner := strings.TrimSuffix(block[open+1:], "}")
	for _, line := range strings.Split(inner, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value := fields[1]
		if unreadable(value) {
			return StencilData{DataCheck: DataUnreadable}
		}
		var ok bool
		switch strings.ToLower(fields[0]) {
		case "ref":
			d.Reference, ok = atoi(value)
		case "readmask":
			d.ReadMask, ok = atoi(value)
		case "writemask":
			d.WriteMask, ok = atoi(value)
		case "comp", "compfront":
			d.ComparisonFront, ok = value, true
		case "pass", "passfront":
			d.PassFront, ok = value, true
		case "fail", "failfront":
			d.FailFront, ok = value, true
		case "zfail", "zfailfront":
			d.ZFailFront, ok = value, true
		case "compback":
			d.ComparisonBack, ok = value, true
		case "passback":
			d.PassBack, ok = value, true
		case "failback":
			d.FailBack, ok = value, true
		case "zfailback":
			d.ZFailBack, ok = value, true
		default:
			ok = true
		}
		if !ok {
			return StencilData{DataCheck: DataUnreadable}
		}
	}
	return d
}

func atoi(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	return v, err == nil
}
