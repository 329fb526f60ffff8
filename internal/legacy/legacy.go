// Package legacy reads and writes the flat, position-dependent field stream
// used by documents saved before the tagged record format. Fields are
// consumed strictly in call order; the document version tells readers which
// optional fields exist. Only the document converter should depend on this
// package.
package legacy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/shadergen/internal/version"
)

const (
	// FieldSeparator separates fields in a serialized stream.
	FieldSeparator = ";"
	// ValueSeparator separates the name and value of a composite field.
	ValueSeparator = ":"
)

// ErrExhausted is returned when a read runs past the end of the stream.
var ErrExhausted = errors.New("legacy: field stream exhausted")

// Split turns a serialized stream into its fields. A trailing separator is
// tolerated.
func Split(data string) []string {
	data = strings.TrimSuffix(data, FieldSeparator)
	if data == "" {
		return nil
	}
	return strings.Split(data, FieldSeparator)
}

// Reader consumes fields from a stream written at a known document version.
// The first failed read is sticky: later reads return zero values and Err
// keeps reporting the original failure.
type Reader struct {
	params  []string
	pos     int
	version int
	err     error
}

// NewReader returns a reader over params for a document written at docVersion.
func NewReader(params []string, docVersion int) *Reader {
	return &Reader{params: params, version: docVersion}
}

// Version returns the document version the stream was written at.
func (r *Reader) Version() int { return r.version }

// Has reports whether the stream carries fields introduced at feature.
func (r *Reader) Has(feature int) bool { return version.Has(r.version, feature) }

// Pos returns the index of the next field to be read.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns how many fields are left.
func (r *Reader) Remaining() int { return len(r.params) - r.pos }

// Err returns the first read error, if any.
func (r *Reader) Err() error { return r.err }

// ClearErr drops a sticky error so the caller can continue with the next
// section after logging the failure.
func (r *Reader) ClearErr() { r.err = nil }

func (r *Reader) next() (string, bool) {
	if r.err != nil {
		return "", false
	}
	if r.pos >= len(r.params) {
		r.err = fmt.Errorf("%w at field %d", ErrExhausted, r.pos)
		return "", false
	}
	v := r.params[r.pos]
	r.pos++
	return v, true
}

func (r *Reader) fail(raw, kind string, err error) {
	r.err = fmt.Errorf("legacy: field %d: cannot read %q as %s: %w", r.pos-1, raw, kind, err)
}

// String reads the next field verbatim.
func (r *Reader) String() string {
	v, _ := r.next()
	return v
}

// Int reads the next field as an integer.
func (r *Reader) Int() int {
	raw, ok := r.next()
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		r.fail(raw, "int", err)
		return 0
	}
	return v
}

// Float reads the next field as a float.
func (r *Reader) Float() float64 {
	raw, ok := r.next()
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		r.fail(raw, "float", err)
		return 0
	}
	return v
}

// Bool reads the next field as a boolean. Both "True"/"False" and the Go
// spellings are accepted.
func (r *Reader) Bool() bool {
	raw, ok := r.next()
	if !ok {
		return false
	}
	v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		r.fail(raw, "bool", err)
		return false
	}
	return v
}

// Writer appends fields in the legacy layout, always at version.Current.
type Writer struct {
	fields []string
}

// NewWriter returns an empty writer.
func NewWriter() *Writer { return &Writer{} }

// String appends s verbatim.
func (w *Writer) String(s string) { w.fields = append(w.fields, s) }

// Int appends an integer field.
func (w *Writer) Int(v int) { w.fields = append(w.fields, strconv.Itoa(v)) }

// Float appends a float field.
func (w *Writer) Float(v float64) {
	w.fields = append(w.fields, strconv.FormatFloat(v, 'g', -1, 64))
}

// Bool appends a boolean field as True or False.
func (w *Writer) Bool(v bool) {
	if v {
		w.fields = append(w.fields, "True")
		return
	}
	w.fields = append(w.fields, "False")
}

// Fields returns the fields written so far.
func (w *Writer) Fields() []string { return w.fields }

// Encode joins the fields into a serialized stream.
func (w *Writer) Encode() string {
	return strings.Join(w.fields, FieldSeparator)
}
