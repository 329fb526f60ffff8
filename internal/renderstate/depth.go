package renderstate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/template"
)

// ZWriteModes and ZTestModes start with a default entry that renders as the
// shader language's own default.
var (
	ZWriteModes = []string{"<Default>", "On", "Off"}
	ZTestModes  = []string{"<Default>", "Less", "Greater", "LEqual", "GEqual", "Equal", "NotEqual", "Always"}
)

const (
	zwriteDefault = 1
	ztestDefault  = 3
)

// Depth renders ZWrite, ZTest and Offset. Each part is declared by the
// template on its own.
type Depth struct {
	base
	validZWrite bool
	validZTest  bool
	validOffset bool

	zwrite        int
	ztest         int
	offsetEnabled bool
	offsetFactor  float64
	offsetUnits   float64
}

func NewDepth() *Depth {
	return &Depth{base: base{name: "depth"}}
}

func (d *Depth) Reset() {
	d.zwrite, d.ztest = 0, 0
	d.offsetEnabled = d.validOffset
	d.offsetFactor, d.offsetUnits = 0, 0
}

func (d *Depth) ValidZWrite() bool { return d.validZWrite }
func (d *Depth) ValidZTest() bool  { return d.validZTest }
func (d *Depth) ValidOffset() bool { return d.validOffset }

// ZWrite returns the effective ZWrite mode.
func (d *Depth) ZWrite() string { return ZWriteModes[effective(d.zwrite, zwriteDefault)] }

// ZTest returns the effective ZTest mode.
func (d *Depth) ZTest() string { return ZTestModes[effective(d.ztest, ztestDefault)] }

// Offset returns whether the offset is enabled and its factor and units.
func (d *Depth) Offset() (bool, float64, float64) {
	return d.offsetEnabled, d.offsetFactor, d.offsetUnits
}

func effective(idx, def int) int {
	if idx == 0 {
		return def
	}
	return idx
}

func (d *Depth) SetZWrite(mode string) error {
	i, err := indexOf("zwrite mode", ZWriteModes, mode)
	if err != nil {
		return err
	}
	d.zwrite = i
	d.markDirty()
	return nil
}

func (d *Depth) SetZTest(mode string) error {
	i, err := indexOf("ztest mode", ZTestModes, mode)
	if err != nil {
		return err
	}
	d.ztest = i
	d.markDirty()
	return nil
}

func (d *Depth) SetOffset(enabled bool, factor, units float64) {
	d.offsetEnabled, d.offsetFactor, d.offsetUnits = enabled, factor, units
	d.markDirty()
}

func (d *Depth) ConfigureFromTemplate(t template.DepthData) {
	if t.ValidZTest && !d.validZTest {
		if i, ok := lookup(ZTestModes, t.ZTestMode); ok {
			d.ztest = i
		}
	}
	if t.ValidZWrite && !d.validZWrite {
		if i, ok := lookup(ZWriteModes, t.ZWriteMode); ok {
			d.zwrite = i
		}
	}
	if t.ValidOffset && !d.validOffset {
		d.offsetFactor, d.offsetUnits = t.OffsetFactor, t.OffsetUnits
	}
	d.validZTest = t.ValidZTest
	d.validZWrite = t.ValidZWrite
	d.validOffset = t.ValidOffset
	d.offsetEnabled = t.ValidOffset
	d.setValid(d.validZTest || d.validZWrite || d.validOffset)
}

func (d *Depth) ZWriteLine() string { return "ZWrite " + d.ZWrite() }
func (d *Depth) ZTestLine() string  { return "ZTest " + d.ZTest() }

func (d *Depth) OffsetLine() string {
	if !d.offsetEnabled {
		return "Offset 0,0"
	}
	return fmt.Sprintf("Offset %s , %s", formatNumber(d.offsetFactor), formatNumber(d.offsetUnits))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// GenerateShaderData renders every declared part, one per line.
func (d *Depth) GenerateShaderData() string {
	var sb strings.Builder
	if d.validZWrite {
		sb.WriteString(d.ZWriteLine() + "\n")
	}
	if d.validZTest {
		sb.WriteString(d.ZTestLine() + "\n")
	}
	if d.validOffset {
		sb.WriteString(d.OffsetLine() + "\n")
	}
	return sb.String()
}

func (d *Depth) CopyFrom(o *Depth) {
	own := d.base
	*d = *o
	d.base = own
	d.dirty = o.dirty
}

func (d *Depth) EncodeRecord(w *record.Writer) {
	w.Bool(fieldValid, d.valid)
	w.Bool("zwrite_valid", d.validZWrite)
	if d.validZWrite {
		w.String("zwrite", ZWriteModes[d.zwrite])
	}
	w.Bool("ztest_valid", d.validZTest)
	if d.validZTest {
		w.String("ztest", ZTestModes[d.ztest])
	}
	w.Bool("offset_valid", d.validOffset)
	if d.validOffset {
		w.Bool("offset_enabled", d.offsetEnabled)
		w.Float("offset_factor", d.offsetFactor)
		w.Float("offset_units", d.offsetUnits)
	}
}

func (d *Depth) DecodeRecord(f record.Fields) error {
	if ok, err := recordValid(f, "zwrite_valid", d.validZWrite); err != nil {
		return err
	} else if ok {
		mode := ZWriteModes[d.zwrite]
		if err := f.String("zwrite", &mode); err != nil {
			return err
		}
		if d.zwrite, err = indexOf("zwrite mode", ZWriteModes, mode); err != nil {
			return err
		}
	}
	if ok, err := recordValid(f, "ztest_valid", d.validZTest); err != nil {
		return err
	} else if ok {
		mode := ZTestModes[d.ztest]
		if err := f.String("ztest", &mode); err != nil {
			return err
		}
		if d.ztest, err = indexOf("ztest mode", ZTestModes, mode); err != nil {
			return err
		}
	}
	if ok, err := recordValid(f, "offset_valid", d.validOffset); err != nil {
		return err
	} else if ok {
		for _, err := range []error{
			f.Bool("offset_enabled", &d.offsetEnabled),
			f.Float("offset_factor", &d.offsetFactor),
			f.Float("offset_units", &d.offsetUnits),
		} {
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Depth) WriteLegacy(w *legacy.Writer) {
	d.WriteLegacyZWrite(w)
	d.WriteLegacyZTest(w)
	d.WriteLegacyOffset(w)
}

func (d *Depth) ReadLegacy(r *legacy.Reader) error {
	if err := d.ReadLegacyZWrite(r); err != nil {
		return err
	}
	if err := d.ReadLegacyZTest(r); err != nil {
		return err
	}
	return d.ReadLegacyOffset(r)
}

func (d *Depth) WriteLegacyZWrite(w *legacy.Writer) {
	w.Bool(d.validZWrite)
	if d.validZWrite {
		w.Int(d.zwrite)
	}
}

func (d *Depth) ReadLegacyZWrite(r *legacy.Reader) error {
	if !legacyValid(r, d.validZWrite) {
		return r.Err()
	}
	idx := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	if err := checkIndex("zwrite mode", idx, ZWriteModes); err != nil {
		return err
	}
	d.zwrite = idx
	return nil
}

func (d *Depth) WriteLegacyZTest(w *legacy.Writer) {
	w.Bool(d.validZTest)
	if d.validZTest {
		w.Int(d.ztest)
	}
}

func (d *Depth) ReadLegacyZTest(r *legacy.Reader) error {
	if !legacyValid(r, d.validZTest) {
		return r.Err()
	}
	idx := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	if err := checkIndex("ztest mode", idx, ZTestModes); err != nil {
		return err
	}
	d.ztest = idx
	return nil
}

func (d *Depth) WriteLegacyOffset(w *legacy.Writer) {
	w.Bool(d.validOffset)
	if d.validOffset {
		w.Bool(d.offsetEnabled)
		w.Float(d.offsetFactor)
		w.Float(d.offsetUnits)
	}
}

func (d *Depth) ReadLegacyOffset(r *legacy.Reader) error {
	if !legacyValid(r, d.validOffset) {
		return r.Err()
	}
	enabled, factor, units := r.Bool(), r.Float(), r.Float()
	if err := r.Err(); err != nil {
		return err
	}
	d.offsetEnabled, d.offsetFactor, d.offsetUnits = enabled, factor, units
	return nil
}
