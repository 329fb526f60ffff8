package renderstate

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/template"
)

const channels = "RGBA"

type ColorMask struct {
	base
	mask [4]bool
}

func NewColorMask() *ColorMask {
	c := &ColorMask{base: base{name: "colormask"}}
	c.Reset()
	return c
}

func (c *ColorMask) Reset()        { c.mask = [4]bool{true, true, true, true} }
func (c *ColorMask) Mask() [4]bool { return c.mask }

func (c *ColorMask) SetMask(m [4]bool) {
	c.mask = m
	c.markDirty()
}

func (c *ColorMask) ConfigureFromTemplate(d template.ColorMaskData) {
	valid := d.DataCheck == template.DataValid
	if valid && !c.valid {
		c.mask = d.Mask
	}
	c.setValid(valid)
}

func (c *ColorMask) GenerateShaderData() string {
	var sb strings.Builder
	for i, on := range c.mask {
		if on {
			sb.WriteByte(channels[i])
		}
	}
	if sb.Len() == 0 {
		return "ColorMask 0"
	}
	return "ColorMask " + sb.String()
}

func (c *ColorMask) CopyFrom(o *ColorMask) {
	c.mask = o.mask
	c.dirty = o.dirty
}

func (c *ColorMask) EncodeRecord(w *record.Writer) {
	w.Bool(fieldValid, c.valid)
	if c.valid {
		w.Bools("mask", c.mask[:])
	}
}

func (c *ColorMask) DecodeRecord(f record.Fields) error {
	valid, err := recordValid(f, fieldValid, c.valid)
	if err != nil || !valid || !f.Has("mask") {
		return err
	}
	var mask []bool
	if err := f.Bools("mask", &mask); err != nil {
		return err
	}
	if len(mask) != len(c.mask) {
		return fmt.Errorf("field \"mask\": got %d channels, want %d", len(mask), len(c.mask))
	}
	copy(c.mask[:], mask)
	return nil
}

func (c *ColorMask) WriteLegacy(w *legacy.Writer) {
	w.Bool(c.valid)
	if c.valid {
		for _, on := range c.mask {
			w.Bool(on)
		}
	}
}

func (c *ColorMask) ReadLegacy(r *legacy.Reader) error {
	if !legacyValid(r, c.valid) {
		return r.Err()
	}
	var mask [4]bool
	for i := range mask {
		mask[i] = r.Bool()
	}
	if err := r.Err(); err != nil {
		return err
	}
	c.mask = mask
	return nil
}
