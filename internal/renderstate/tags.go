package renderstate

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/template"
)

type Tags struct {
	base
	tags []template.Tag
}

func NewTags() *Tags {
	return &Tags{base: base{name: "tags"}}
}

func (t *Tags) Reset() { t.tags = nil }

// Tags returns a copy of the tags in declaration order.
func (t *Tags) Tags() []template.Tag {
	return append([]template.Tag(nil), t.tags...)
}

// Set updates the value of name, appending it when it is new.
func (t *Tags) Set(name, value string) {
	t.set(name, value)
	t.markDirty()
}

func (t *Tags) set(name, value string) {
	for i := range t.tags {
		if t.tags[i].Name == name {
			t.tags[i].Value = value
			return
		}
	}
	t.tags = append(t.tags, template.Tag{Name: name, Value: value})
}

// Remove drops name and reports whether it was present.
func (t *Tags) Remove(name string) bool {
	for i := range t.tags {
		if t.tags[i].Name == name {
			t.tags = append(t.tags[:i], t.tags[i+1:]...)
			t.markDirty()
			return true
		}
	}
	return false
}

func (t *Tags) ConfigureFromTemplate(d template.TagsData) {
	valid := d.DataCheck == template.DataValid
	if valid && !t.valid {
		t.tags = append([]template.Tag(nil), d.Tags...)
	}
	t.setValid(valid)
}

// GenerateShaderData renders the Tags block. Tags missing a name or a value
// are skipped; no tags at all render nothing.
func (t *Tags) GenerateShaderData() string {
	if len(t.tags) == 0 {
		return ""
	}
	var parts []string
	for _, tag := range t.tags {
		if tag.Name != "" && tag.Value != "" {
			parts = append(parts, fmt.Sprintf("\"%s\"=\"%s\"", tag.Name, tag.Value))
		}
	}
	return "Tags { " + strings.Join(parts, " ") + " }"
}

func (t *Tags) CopyFrom(o *Tags) {
	t.tags = append([]template.Tag(nil), o.tags...)
	t.dirty = o.dirty
}

func (t *Tags) EncodeRecord(w *record.Writer) {
	w.Bool(fieldValid, t.valid)
	if !t.valid {
		return
	}
	pairs := make([][2]string, len(t.tags))
	for i, tag := range t.tags {
		pairs[i] = [2]string{tag.Name, tag.Value}
	}
	w.Pairs("tags", pairs)
}

func (t *Tags) DecodeRecord(f record.Fields) error {
	valid, err := recordValid(f, fieldValid, t.valid)
	if err != nil || !valid {
		return err
	}
	var pairs [][2]string
	if err := f.Pairs("tags", &pairs); err != nil {
		return err
	}
	for _, p := range pairs {
		t.set(p[0], p[1])
	}
	return nil
}

func (t *Tags) WriteLegacy(w *legacy.Writer) {
	w.Bool(t.valid)
	if !t.valid {
		return
	}
	w.Int(len(t.tags))
	for _, tag := range t.tags {
		w.String(tag.Name + legacy.ValueSeparator + tag.Value)
	}
}

func (t *Tags) ReadLegacy(r *legacy.Reader) error {
	if !legacyValid(r, t.valid) {
		return r.Err()
	}
	count := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	if count < 0 || count > r.Remaining() {
		return fmt.Errorf("tag count %d exceeds the %d remaining fields", count, r.Remaining())
	}
	for range count {
		name, value, ok := strings.Cut(r.String(), legacy.ValueSeparator)
		if ok {
			t.set(name, value)
		}
	}
	return r.Err()
}
