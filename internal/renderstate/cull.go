package renderstate

import (
	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/template"
)

// CullModes are the accepted cull modes.
var CullModes = []string{"Back", "Front", "Off"}

const (
	CullBack = "Back"
	CullOff  = "Off"
)

type Cull struct {
	base
	mode string
}

func NewCull() *Cull {
	return &Cull{base: base{name: "cull"}, mode: CullBack}
}

func (c *Cull) Reset()       { c.mode = CullBack }
func (c *Cull) Mode() string { return c.mode }

func (c *Cull) SetMode(mode string) error {
	i, err := indexOf("cull mode", CullModes, mode)
	if err != nil {
		return err
	}
	c.mode = CullModes[i]
	c.markDirty()
	return nil
}

func (c *Cull) ConfigureFromTemplate(d template.CullData) {
	valid := d.DataCheck == template.DataValid
	if valid && !c.valid {
		if i, ok := lookup(CullModes, d.Mode); ok {
			c.mode = CullModes[i]
		}
	}
	c.setValid(valid)
}

func (c *Cull) GenerateShaderData() string { return "Cull " + c.mode }

func (c *Cull) CopyFrom(o *Cull) {
	c.mode = o.mode
	c.dirty = o.dirty
}

func (c *Cull) EncodeRecord(w *record.Writer) {
	w.Bool(fieldValid, c.valid)
	if c.valid {
		w.String("mode", c.mode)
	}
}

func (c *Cull) DecodeRecord(f record.Fields) error {
	valid, err := recordValid(f, fieldValid, c.valid)
	if err != nil || !valid {
		return err
	}
	mode := c.mode
	if err := f.String("mode", &mode); err != nil {
		return err
	}
	i, err := indexOf("cull mode", CullModes, mode)
	if err != nil {
		return err
	}
	c.mode = CullModes[i]
	return nil
}

func (c *Cull) WriteLegacy(w *legacy.Writer) {
	w.Bool(c.valid)
	if c.valid {
		w.String(c.mode)
	}
}

func (c *Cull) ReadLegacy(r *legacy.Reader) error {
	if !legacyValid(r, c.valid) {
		return r.Err()
	}
	mode := r.String()
	if err := r.Err(); err != nil {
		return err
	}
	i, err := indexOf("cull mode", CullModes, mode)
	if err != nil {
		return err
	}
	c.mode = CullModes[i]
	return nil
}
