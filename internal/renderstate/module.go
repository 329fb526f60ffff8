package renderstate

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/version"
)

// Module is the contract shared by every render-state module.
type Module interface {
	Name() string
	// IsValid reports whether the template declares this state.
	IsValid() bool
	IsDirty() bool
	ClearDirty()
	// Reset restores the compiled-in defaults. Validity is left alone since
	// it only follows the template.
	Reset()
	EncodeRecord(w *record.Writer)
	DecodeRecord(f record.Fields) error
	WriteLegacy(w *legacy.Writer)
	ReadLegacy(r *legacy.Reader) error
}

// Record field holding a module's validity.
const fieldValid = "valid"

type base struct {
	name  string
	valid bool
	dirty bool
}

func (b *base) Name() string    { return b.name }
func (b *base) IsValid() bool   { return b.valid }
func (b *base) IsDirty() bool   { return b.dirty }
func (b *base) ClearDirty()     { b.dirty = false }
func (b *base) markDirty()      { b.dirty = true }
func (b *base) setValid(v bool) { b.valid = v }

// legacyValid reads the leading validity flag of a legacy section. Older
// documents carry no flag; the current validity decides instead. The flag
// only gates the payload, it never changes what the template declares.
func legacyValid(r *legacy.Reader, current bool) bool {
	if r.Has(version.ModuleValidityFlag) {
		return r.Bool()
	}
	return current
}

// recordValid is the tagged-record counterpart of legacyValid.
func recordValid(f record.Fields, field string, current bool) (bool, error) {
	valid := current
	if err := f.Bool(field, &valid); err != nil {
		return false, err
	}
	return valid, nil
}

// lookup returns the index of name in values, ignoring case.
func lookup(values []string, name string) (int, bool) {
	for i, v := range values {
		if strings.EqualFold(v, name) {
			return i, true
		}
	}
	return 0, false
}

// canonical returns the spelling of name used in values, or name itself.
func canonical(values []string, name string) string {
	if i, ok := lookup(values, name); ok {
		return values[i]
	}
	return name
}

func checkIndex(what string, idx int, values []string) error {
	if idx < 0 || idx >= len(values) {
		return fmt.Errorf("%s index %d out of range [0,%d)", what, idx, len(values))
	}
	return nil
}

func indexOf(what string, values []string, name string) (int, error) {
	if i, ok := lookup(values, name); ok {
		return i, nil
	}
	return 0, fmt.Errorf("unknown %s %q", what, name)
}
