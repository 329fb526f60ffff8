package renderstate

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/template"
)

// StencilComparisons and StencilOps are indexed by the stencil fields.
// Index 0 is the default of each list.
var (
	StencilComparisons = []string{"Always", "Greater", "GEqual", "Less", "LEqual", "Equal", "NotEqual", "Never"}
	StencilOps         = []string{"Keep", "Zero", "Replace", "IncrSat", "DecrSat", "Invert", "IncrWrap", "DecrWrap"}
)

const defaultMask = 255

// StencilFace is the comparison and operations for one face.
type StencilFace struct {
	Comparison int
	Pass       int
	Fail       int
	ZFail      int
}

func (f StencilFace) isDefault() bool { return f == StencilFace{} }

type Stencil struct {
	base
	reference int
	readMask  int
	writeMask int
	front     StencilFace
	back      StencilFace
}

func NewStencil() *Stencil {
	s := &Stencil{base: base{name: "stencil"}}
	s.Reset()
	return s
}

func (s *Stencil) Reset() {
	s.reference = 0
	s.readMask, s.writeMask = defaultMask, defaultMask
	s.front, s.back = StencilFace{}, StencilFace{}
}

func (s *Stencil) Reference() int     { return s.reference }
func (s *Stencil) ReadMask() int      { return s.readMask }
func (s *Stencil) WriteMask() int     { return s.writeMask }
func (s *Stencil) Front() StencilFace { return s.front }
func (s *Stencil) Back() StencilFace  { return s.back }

// SetMasks sets the reference value and both masks. Values are clamped to
// a byte.
func (s *Stencil) SetMasks(reference, readMask, writeMask int) {
	s.reference, s.readMask, s.writeMask = clampByte(reference), clampByte(readMask), clampByte(writeMask)
	s.markDirty()
}

func clampByte(v int) int {
	return max(0, min(255, v))
}

// SetFront sets the front face by name. Empty names keep the default.
func (s *Stencil) SetFront(comp, pass, fail, zfail string) error {
	f, err := parseFace(comp, pass, fail, zfail)
	if err != nil {
		return err
	}
	s.front = f
	s.markDirty()
	return nil
}

// SetBack is SetFront for the back face.
func (s *Stencil) SetBack(comp, pass, fail, zfail string) error {
	f, err := parseFace(comp, pass, fail, zfail)
	if err != nil {
		return err
	}
	s.back = f
	s.markDirty()
	return nil
}

func parseFace(comp, pass, fail, zfail string) (StencilFace, error) {
	var f StencilFace
	var err error
	if comp != "" {
		if f.Comparison, err = indexOf("stencil comparison", StencilComparisons, comp); err != nil {
			return f, err
		}
	}
	ops := []struct {
		name string
		dst  *int
	}{{pass, &f.Pass}, {fail, &f.Fail}, {zfail, &f.ZFail}}
	for _, op := range ops {
		if op.name == "" {
			continue
		}
		if *op.dst, err = indexOf("stencil op", StencilOps, op.name); err != nil {
			return f, err
		}
	}
	return f, nil
}

// faceFromTemplate maps template names to indices. Missing or unknown
// names take the defaults.
func faceFromTemplate(comp, pass, fail, zfail string) StencilFace {
	var f StencilFace
	f.Comparison, _ = lookup(StencilComparisons, comp)
	f.Pass, _ = lookup(StencilOps, pass)
	f.Fail, _ = lookup(StencilOps, fail)
	f.ZFail, _ = lookup(StencilOps, zfail)
	return f
}

func (s *Stencil) ConfigureFromTemplate(d template.StencilData) {
	valid := d.DataCheck == template.DataValid
	if valid && !s.valid {
		s.reference, s.readMask, s.writeMask = d.Reference, d.ReadMask, d.WriteMask
		s.front = faceFromTemplate(d.ComparisonFront, d.PassFront, d.FailFront, d.ZFailFront)
		s.back = faceFromTemplate(d.ComparisonBack, d.PassBack, d.FailBack, d.ZFailBack)
	}
	s.setValid(valid)
}

// GenerateShaderData renders the Stencil block. Separate front and back
// states are only written when nothing is culled and the back face differs
// from the defaults.
func (s *Stencil) GenerateShaderData(cull string) string {
	var sb strings.Builder
	sb.WriteString("Stencil\n{\n")
	fmt.Fprintf(&sb, "\tRef %d\n", s.reference)
	if s.readMask != defaultMask {
		fmt.Fprintf(&sb, "\tReadMask %d\n", s.readMask)
	}
	if s.writeMask != defaultMask {
		fmt.Fprintf(&sb, "\tWriteMask %d\n", s.writeMask)
	}
	if cull == CullOff && !s.back.isDefault() {
		writeFace(&sb, s.front, "Front")
		writeFace(&sb, s.back, "Back")
	} else {
		writeFace(&sb, s.front, "")
	}
	sb.WriteString("}\n")
	return sb.String()
}

func writeFace(sb *strings.Builder, f StencilFace, suffix string) {
	if f.Comparison != 0 {
		fmt.Fprintf(sb, "\tComp%s %s\n", suffix, StencilComparisons[f.Comparison])
	}
	if f.Pass != 0 {
		fmt.Fprintf(sb, "\tPass%s %s\n", suffix, StencilOps[f.Pass])
	}
	if f.Fail != 0 {
		fmt.Fprintf(sb, "\tFail%s %s\n", suffix, StencilOps[f.Fail])
	}
	if f.ZFail != 0 {
		fmt.Fprintf(sb, "\tZFail%s %s\n", suffix, StencilOps[f.ZFail])
	}
}

func (s *Stencil) CopyFrom(o *Stencil) {
	own := s.base
	*s = *o
	s.base = own
	s.dirty = o.dirty
}

func (s *Stencil) EncodeRecord(w *record.Writer) {
	w.Bool(fieldValid, s.valid)
	if !s.valid {
		return
	}
	w.Int("ref", s.reference)
	w.Int("read_mask", s.readMask)
	w.Int("write_mask", s.writeMask)
	encodeFace(w, "front", s.front)
	encodeFace(w, "back", s.back)
}

func encodeFace(w *record.Writer, prefix string, f StencilFace) {
	w.String(prefix+"_comp", StencilComparisons[f.Comparison])
	w.String(prefix+"_pass", StencilOps[f.Pass])
	w.String(prefix+"_fail", StencilOps[f.Fail])
	w.String(prefix+"_zfail", StencilOps[f.ZFail])
}

func (s *Stencil) DecodeRecord(f record.Fields) error {
	valid, err := recordValid(f, fieldValid, s.valid)
	if err != nil || !valid {
		return err
	}
	ref, readMask, writeMask := s.reference, s.readMask, s.writeMask
	for _, err := range []error{
		f.Int("ref", &ref),
		f.Int("read_mask", &readMask),
		f.Int("write_mask", &writeMask),
	} {
		if err != nil {
			return err
		}
	}
	front, err := decodeFace(f, "front", s.front)
	if err != nil {
		return err
	}
	back, err := decodeFace(f, "back", s.back)
	if err != nil {
		return err
	}
	s.reference, s.readMask, s.writeMask = ref, readMask, writeMask
	s.front, s.back = front, back
	return nil
}

func decodeFace(f record.Fields, prefix string, current StencilFace) (StencilFace, error) {
	comp := StencilComparisons[current.Comparison]
	pass, fail, zfail := StencilOps[current.Pass], StencilOps[current.Fail], StencilOps[current.ZFail]
	for _, err := range []error{
		f.String(prefix+"_comp", &comp),
		f.String(prefix+"_pass", &pass),
		f.String(prefix+"_fail", &fail),
		f.String(prefix+"_zfail", &zfail),
	} {
		if err != nil {
			return current, err
		}
	}
	return parseFace(comp, pass, fail, zfail)
}

func (s *Stencil) WriteLegacy(w *legacy.Writer) {
	w.Bool(s.valid)
	if !s.valid {
		return
	}
	w.Int(s.reference)
	w.Int(s.readMask)
	w.Int(s.writeMask)
	for _, f := range []StencilFace{s.front, s.back} {
		w.Int(f.Comparison)
		w.Int(f.Pass)
		w.Int(f.Fail)
		w.Int(f.ZFail)
	}
}

func (s *Stencil) ReadLegacy(r *legacy.Reader) error {
	if !legacyValid(r, s.valid) {
		return r.Err()
	}
	ref, readMask, writeMask := r.Int(), r.Int(), r.Int()
	var faces [2]StencilFace
	for i := range faces {
		faces[i] = StencilFace{Comparison: r.Int(), Pass: r.Int(), Fail: r.Int(), ZFail: r.Int()}
	}
	if err := r.Err(); err != nil {
		return err
	}
	for _, f := range faces {
		if err := checkFace(f); err != nil {
			return err
		}
	}
	s.reference, s.readMask, s.writeMask = ref, readMask, writeMask
	s.front, s.back = faces[0], faces[1]
	return nil
}

func checkFace(f StencilFace) error {
	if err := checkIndex("stencil comparison", f.Comparison, StencilComparisons); err != nil {
		return err
	}
	for _, op := range []int{f.Pass, f.Fail, f.ZFail} {
		if err := checkIndex("stencil op", op, StencilOps); err != nil {
			return err
		}
	}
	return nil
}
