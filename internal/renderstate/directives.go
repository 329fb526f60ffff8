package renderstate

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
)

// DirectiveKind selects how a Directives module renders its items.
type DirectiveKind int

const (
	PragmaDirective DirectiveKind = iota
	IncludeDirective
	DefineDirective
)

var directiveNames = map[DirectiveKind]string{
	PragmaDirective:  "pragmas",
	IncludeDirective: "includes",
	DefineDirective:  "defines",
}

// Format renders one item as a directive line.
func (k DirectiveKind) Format(item string) string {
	switch k {
	case IncludeDirective:
		return fmt.Sprintf("#include \"%s\"", item)
	case DefineDirective:
		return "#define " + item
	}
	return "#pragma " + item
}

// Directives holds the extra pragmas, includes or defines a user adds to a
// pass. Items the template already declares are native and never rendered
// a second time.
type Directives struct {
	base
	kind   DirectiveKind
	native []string
	items  []string
}

func NewDirectives(kind DirectiveKind) *Directives {
	return &Directives{base: base{name: directiveNames[kind]}, kind: kind}
}

func (d *Directives) Reset()              { d.items = nil }
func (d *Directives) Kind() DirectiveKind { return d.kind }
func (d *Directives) Items() []string     { return slices.Clone(d.items) }

// Add appends item unless it is already present.
func (d *Directives) Add(item string) {
	if item == "" || slices.Contains(d.items, item) {
		return
	}
	d.items = append(d.items, item)
	d.markDirty()
}

func (d *Directives) Remove(item string) {
	if i := slices.Index(d.items, item); i >= 0 {
		d.items = slices.Delete(d.items, i, i+1)
		d.markDirty()
	}
}

// ConfigureFromTemplate marks the module valid when the level has a place
// to render directives and records the template's own items.
func (d *Directives) ConfigureFromTemplate(hasPragmaTag bool, native []string) {
	d.setValid(hasPragmaTag)
	if hasPragmaTag {
		d.native = slices.Clone(native)
	}
}

// IsNative reports whether the template already declares item.
func (d *Directives) IsNative(item string) bool { return slices.Contains(d.native, item) }

// Lines returns the directive lines to render.
func (d *Directives) Lines() []string {
	var lines []string
	for _, item := range d.items {
		if !d.IsNative(item) {
			lines = append(lines, d.kind.Format(item))
		}
	}
	return lines
}

func (d *Directives) CopyFrom(o *Directives) {
	d.items = slices.Clone(o.items)
	d.dirty = o.dirty
}

func (d *Directives) EncodeRecord(w *record.Writer) {
	w.Bool(fieldValid, d.valid)
	w.Strings("items", d.items)
}

func (d *Directives) DecodeRecord(f record.Fields) error {
	var items []string
	if err := f.Strings("items", &items); err != nil {
		return err
	}
	for _, item := range items {
		if item != "" && !slices.Contains(d.items, item) {
			d.items = append(d.items, item)
		}
	}
	return nil
}

// WriteLegacy writes the item count followed by the items. Directive lists
// carry no validity flag.
func (d *Directives) WriteLegacy(w *legacy.Writer) {
	w.Int(len(d.items))
	for _, item := range d.items {
		w.String(item)
	}
}

func (d *Directives) ReadLegacy(r *legacy.Reader) error {
	count := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	if count < 0 || count > r.Remaining() {
		return fmt.Errorf("%s count %d exceeds the %d remaining fields", d.name, count, r.Remaining())
	}
	for range count {
		item := r.String()
		if item != "" && !slices.Contains(d.items, item) {
			d.items = append(d.items, item)
		}
	}
	return r.Err()
}
