package template

import (
	"sort"
	"strings"
)

// Marker is one insertion point in a template body.
type Marker struct {
	ID     string
	Offset int
	// Length is how many bytes of the body the marker replaces.
	Length               int
	Indentation          string
	UseCustomIndentation bool
	AutoLineFeed         bool
	// Keep leaves the original text in place when no fragment is supplied.
	Keep bool
	Used bool
}

// End returns the offset just past the marker.
func (m Marker) End() int { return m.Offset + m.Length }

// Index records where generated text is spliced into a template body.
// Offsets are only valid for the exact body the index was built from.
type Index struct {
	body    string
	markers []*Marker
	byID    map[string]*Marker
}

// NewIndex returns an empty index over body.
func NewIndex(body string) *Index {
	return &Index{body: body, byID: make(map[string]*Marker)}
}

// BuildIndex scans body once per tag for its first occurrence. Tags that do
// not occur are left out.
func BuildIndex(body string, tags []TagSpec) *Index {
	idx := NewIndex(body)
	for _, tag := range tags {
		idx.AddFirst(tag)
	}
	return idx
}

// AddFirst records the first occurrence of spec.ID. It reports whether the
// marker was added.
func (x *Index) AddFirst(spec TagSpec) bool {
	pos := strings.Index(x.body, spec.ID)
	if pos < 0 {
		return false
	}
	_, ok := x.AddAt(spec.ID, pos, len(spec.ID), spec.SearchIndentation, spec.CustomIndentation, false)
	return ok
}

// AddAt records a marker with an explicit span. With searchIndentation the
// indentation is the leading whitespace of the line holding the marker, and
// the marker is only recorded when a line break precedes it. Otherwise the
// custom indentation is used as given.
func (x *Index) AddAt(id string, offset, length int, searchIndentation bool, customIndentation string, keep bool) (*Marker, bool) {
	if _, dup := x.byID[id]; dup {
		return nil, false
	}
	if offset < 0 || offset+length > len(x.body) {
		return nil, false
	}
	m := &Marker{ID: id, Offset: offset, Length: length, Keep: keep}
	if searchIndentation {
		lineStart := strings.LastIndexByte(x.body[:offset], '\n')
		if lineStart < 0 {
			return nil, false
		}
		m.Indentation = leadingWhitespace(x.body[lineStart+1 : offset])
	} else {
		m.Indentation = customIndentation
		m.UseCustomIndentation = true
	}
	m.AutoLineFeed = m.Indentation != ""
	x.markers = append(x.markers, m)
	x.byID[id] = m
	return m, true
}

func leadingWhitespace(s string) string {
	for i, r := range s {
		if r != ' ' && r != '\t' {
			return s[:i]
		}
	}
	return s
}

// Body returns the text the index was built over.
func (x *Index) Body() string { return x.body }

// Has reports whether id was found.
func (x *Index) Has(id string) bool {
	_, ok := x.byID[id]
	return ok
}

// Marker returns a copy of the marker recorded for id.
func (x *Index) Marker(id string) (Marker, bool) {
	m, ok := x.byID[id]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// Text returns the body text currently covered by the marker.
func (x *Index) Text(id string) string {
	m, ok := x.byID[id]
	if !ok {
		return ""
	}
	return x.body[m.Offset:m.End()]
}

// Markers returns copies of all markers ordered by offset.
func (x *Index) Markers() []Marker {
	out := make([]Marker, 0, len(x.markers))
	for _, m := range x.markers {
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// MarkUsed flags id as filled for the current build and reports whether it
// had already been filled.
func (x *Index) MarkUsed(id string) bool {
	m, ok := x.byID[id]
	if !ok {
		return false
	}
	was := m.Used
	m.Used = true
	return was
}

// IsUsed reports whether id was filled in the current build.
func (x *Index) IsUsed(id string) bool {
	m, ok := x.byID[id]
	return ok && m.Used
}

// ResetUsageFlags clears every usage flag before a new build.
func (x *Index) ResetUsageFlags() {
	for _, m := range x.markers {
		m.Used = false
	}
}

// Clone returns an index over the same body with independent usage flags.
func (x *Index) Clone() *Index {
	c := NewIndex(x.body)
	for _, m := range x.markers {
		cp := *m
		c.markers = append(c.markers, &cp)
		c.byID[cp.ID] = &cp
	}
	return c
}

// Splice returns the body with every marker replaced by its fragment.
// Markers without a fragment are removed unless flagged Keep; a removed
// marker that sits alone on its line takes the whole line with it.
func (x *Index) Splice(fragments map[string]string) string {
	markers := x.Markers()
	var sb strings.Builder
	sb.Grow(len(x.body))
	cursor := 0
	for _, m := range markers {
		if m.Offset < cursor {
			continue
		}
		frag, ok := fragments[m.ID]
		if !ok && m.Keep {
			continue
		}
		start, end := m.Offset, m.End()
		text := x.format(m, frag)
		if text == "" {
			start, end = x.lineBounds(m, cursor)
		}
		sb.WriteString(x.body[cursor:start])
		sb.WriteString(text)
		cursor = end
	}
	sb.WriteString(x.body[cursor:])
	return sb.String()
}

func (x *Index) format(m Marker, frag string) string {
	frag = strings.TrimRight(frag, "\n")
	if frag == "" {
		return ""
	}
	if m.AutoLineFeed {
		frag = strings.ReplaceAll(frag, "\n", "\n"+m.Indentation)
	}
	if strings.HasSuffix(x.body[m.Offset:m.End()], "\n") {
		frag += "\n"
	}
	return frag
}

// lineBounds widens an emptied marker to its whole line when nothing else
// is on that line.
func (x *Index) lineBounds(m Marker, cursor int) (int, int) {
	start, end := m.Offset, m.End()
	lineStart := strings.LastIndexByte(x.body[:start], '\n') + 1
	if lineStart < cursor || strings.TrimSpace(x.body[lineStart:start]) != "" {
		return start, end
	}
	if strings.HasSuffix(x.body[start:end], "\n") {
		return lineStart, end
	}
	lineEnd := strings.IndexByte(x.body[end:], '\n')
	if lineEnd < 0 {
		if strings.TrimSpace(x.body[end:]) == "" {
			return lineStart, len(x.body)
		}
		return start, end
	}
	if strings.TrimSpace(x.body[end:end+lineEnd]) != "" {
		return start, end
	}
	return lineStart, end + lineEnd + 1
}
