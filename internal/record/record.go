// Package record implements the self-describing tagged-field format used to
// persist module state. A record is a set of named HCL attributes: a field
// that is absent from a record leaves the compiled-in default untouched, so
// adding a field never shifts the meaning of the fields around it.
package record

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Fields is the decoded set of attributes of one record.
type Fields struct {
	values map[string]cty.Value
}

// NewFields wraps already-evaluated attribute values.
func NewFields(values map[string]cty.Value) Fields {
	if values == nil {
		values = map[string]cty.Value{}
	}
	return Fields{values: values}
}

// FromBody evaluates every attribute of body. Nested blocks are not allowed
// inside a record.
func FromBody(body hcl.Body) (Fields, hcl.Diagnostics) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return Fields{}, diags
	}
	values := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		values[name] = val
	}
	return NewFields(values), diags
}

// Has reports whether the record carries name.
func (f Fields) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Names returns the attribute names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f.values))
	for n := range f.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of fields.
func (f Fields) Len() int { return len(f.values) }

func (f Fields) decode(name string, ty cty.Type, dst any) error {
	val, ok := f.values[name]
	if !ok {
		return nil
	}
	if val.IsNull() {
		return fmt.Errorf("field %q: value is null", name)
	}
	conv, err := convert.Convert(val, ty)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	if err := gocty.FromCtyValue(conv, dst); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

// Int decodes name into dst if present.
func (f Fields) Int(name string, dst *int) error { return f.decode(name, cty.Number, dst) }

// Float decodes name into dst if present.
func (f Fields) Float(name string, dst *float64) error { return f.decode(name, cty.Number, dst) }

// Bool decodes name into dst if present.
func (f Fields) Bool(name string, dst *bool) error { return f.decode(name, cty.Bool, dst) }

// String decodes name into dst if present. Numbers and bools are accepted
// and rendered in their canonical string form.
func (f Fields) String(name string, dst *string) error { return f.decode(name, cty.String, dst) }

// Strings decodes a list of strings.
func (f Fields) Strings(name string, dst *[]string) error {
	return f.decode(name, cty.List(cty.String), dst)
}

// Bools decodes a list of booleans.
func (f Fields) Bools(name string, dst *[]bool) error {
	return f.decode(name, cty.List(cty.Bool), dst)
}

// Pairs decodes a list of two-element string lists, preserving order.
func (f Fields) Pairs(name string, dst *[][2]string) error {
	var raw [][]string
	if err := f.decode(name, cty.List(cty.List(cty.String)), &raw); err != nil {
		return err
	}
	if !f.Has(name) {
		return nil
	}
	out := make([][2]string, 0, len(raw))
	for i, p := range raw {
		if len(p) != 2 {
			return fmt.Errorf("field %q: element %d has %d items, want 2", name, i, len(p))
		}
		out = append(out, [2]string{p[0], p[1]})
	}
	*dst = out
	return nil
}

// WriteTo sets every field on body in name order.
func (f Fields) WriteTo(body *hclwrite.Body) {
	for _, name := range f.Names() {
		body.SetAttributeValue(name, f.values[name])
	}
}

// Writer sets record attributes on an hclwrite body.
type Writer struct {
	body *hclwrite.Body
}

// NewWriter writes attributes into body.
func NewWriter(body *hclwrite.Body) *Writer { return &Writer{body: body} }

// Int sets an integer attribute.
func (w *Writer) Int(name string, v int) {
	w.body.SetAttributeValue(name, cty.NumberIntVal(int64(v)))
}

// Float sets a number attribute.
func (w *Writer) Float(name string, v float64) {
	w.body.SetAttributeValue(name, cty.NumberFloatVal(v))
}

// Bool sets a boolean attribute.
func (w *Writer) Bool(name string, v bool) {
	w.body.SetAttributeValue(name, cty.BoolVal(v))
}

// String sets a string attribute.
func (w *Writer) String(name, v string) {
	w.body.SetAttributeValue(name, cty.StringVal(v))
}

// Strings sets a list of strings.
func (w *Writer) Strings(name string, v []string) {
	if len(v) == 0 {
		w.body.SetAttributeValue(name, cty.ListValEmpty(cty.String))
		return
	}
	vals := make([]cty.Value, len(v))
	for i, s := range v {
		vals[i] = cty.StringVal(s)
	}
	w.body.SetAttributeValue(name, cty.ListVal(vals))
}

// Bools sets a list of booleans.
func (w *Writer) Bools(name string, v []bool) {
	if len(v) == 0 {
		w.body.SetAttributeValue(name, cty.ListValEmpty(cty.Bool))
		return
	}
	vals := make([]cty.Value, len(v))
	for i, b := range v {
		vals[i] = cty.BoolVal(b)
	}
	w.body.SetAttributeValue(name, cty.ListVal(vals))
}

// Pairs sets an ordered list of name/value pairs.
func (w *Writer) Pairs(name string, v [][2]string) {
	if len(v) == 0 {
		w.body.SetAttributeValue(name, cty.ListValEmpty(cty.List(cty.String)))
		return
	}
	vals := make([]cty.Value, len(v))
	for i, p := range v {
		vals[i] = cty.ListVal([]cty.Value{cty.StringVal(p[0]), cty.StringVal(p[1])})
	}
	w.body.SetAttributeValue(name, cty.ListVal(vals))
}

// Encode renders a standalone record produced by fn.
func Encode(fn func(w *Writer)) []byte {
	f := hclwrite.NewEmptyFile()
	fn(NewWriter(f.Body()))
	return f.Bytes()
}

// Decode parses a standalone record produced by Encode.
func Decode(src []byte, filename string) (Fields, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Fields{}, fmt.Errorf("failed to parse record %s: %w", filename, diags)
	}
	fields, diags := FromBody(file.Body)
	if diags.HasErrors() {
		return Fields{}, fmt.Errorf("failed to decode record %s: %w", filename, diags)
	}
	return fields, nil
}
