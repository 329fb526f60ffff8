package renderstate

import (
	"fmt"
	"strconv"

	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/template"
)

// BlendFactors are the accepted blend factor names.
var BlendFactors = []string{
	"One", "Zero", "SrcColor", "SrcAlpha", "DstColor", "DstAlpha",
	"OneMinusSrcColor", "OneMinusSrcAlpha", "OneMinusDstColor", "OneMinusDstAlpha",
	"SrcAlphaSaturate",
}

// BlendOps are the accepted blend operations. OFF disables the operation.
var BlendOps = []string{"OFF", "Add", "Sub", "RevSub", "Min", "Max"}

const BlendOpOff = "OFF"

// BlendPreset is a named pair of blend factors.
type BlendPreset struct {
	Name   string
	Source string
	Dest   string
}

// BlendPresets is indexed by the RGB and alpha preset indices. Index 0
// turns blending off and index 1 marks hand-picked factors.
var BlendPresets = []BlendPreset{
	{"<OFF>", "Zero", "Zero"},
	{"Custom", "Zero", "Zero"},
	{"Alpha Blend", "SrcAlpha", "OneMinusSrcAlpha"},
	{"Premultiplied", "One", "OneMinusSrcAlpha"},
	{"Additive", "One", "One"},
	{"Soft Additive", "OneMinusDstColor", "One"},
	{"Multiplicative", "DstColor", "Zero"},
	{"2x Multiplicative", "DstColor", "SrcColor"},
	{"Particle Additive", "SrcAlpha", "One"},
}

const (
	presetOff    = 0
	presetCustom = 1
)

// PresetIndex resolves a preset by name, ignoring case.
func PresetIndex(name string) (int, bool) {
	return lookup(presetNames(), name)
}

// presetField reads a preset given either by index or by name.
func presetField(f record.Fields, name string, dst *int) error {
	if !f.Has(name) {
		return nil
	}
	var raw string
	if err := f.String(name, &raw); err != nil {
		return err
	}
	if i, err := strconv.Atoi(raw); err == nil {
		*dst = i
		return nil
	}
	i, ok := PresetIndex(raw)
	if !ok {
		return fmt.Errorf("unknown blend preset %q", raw)
	}
	*dst = i
	return nil
}

// Blend renders the Blend and BlendOp lines.
type Blend struct {
	base
	validMode bool
	validOp   bool

	rgbPreset   int
	srcRGB      string
	dstRGB      string
	alphaPreset int
	srcAlpha    string
	dstAlpha    string

	opRGB   string
	opAlpha string
}

func NewBlend() *Blend {
	b := &Blend{base: base{name: "blend"}}
	b.Reset()
	return b
}

func (b *Blend) Reset() {
	b.rgbPreset, b.alphaPreset = presetOff, presetOff
	b.srcRGB, b.dstRGB = "Zero", "Zero"
	b.srcAlpha, b.dstAlpha = "Zero", "Zero"
	b.opRGB, b.opAlpha = BlendOpOff, BlendOpOff
}

func (b *Blend) ValidBlendMode() bool { return b.validMode }
func (b *Blend) ValidBlendOp() bool   { return b.validOp }
func (b *Blend) RGBPreset() int       { return b.rgbPreset }
func (b *Blend) AlphaPreset() int     { return b.alphaPreset }

// RGBFactors returns the source and destination RGB factors.
func (b *Blend) RGBFactors() (string, string) { return b.srcRGB, b.dstRGB }

// AlphaFactors returns the source and destination alpha factors.
func (b *Blend) AlphaFactors() (string, string) { return b.srcAlpha, b.dstAlpha }

// Ops returns the RGB and alpha blend operations.
func (b *Blend) Ops() (string, string) { return b.opRGB, b.opAlpha }

// ConfigureFromTemplate adopts the template's blend state the first time
// the template declares it.
func (b *Blend) ConfigureFromTemplate(d template.BlendData) {
	if d.ValidBlendMode && !b.validMode {
		b.srcRGB = factorOr(d.SourceFactorRGB, "Zero")
		b.dstRGB = factorOr(d.DestFactorRGB, "Zero")
		b.srcAlpha = factorOr(d.SourceFactorAlpha, "Zero")
		b.dstAlpha = factorOr(d.DestFactorAlpha, "Zero")
		if d.BlendModeOff {
			b.rgbPreset = presetOff
		} else {
			b.checkRGBPreset()
		}
		if d.SeparateBlendFactors {
			b.checkAlphaPreset()
		} else {
			b.alphaPreset = presetOff
		}
	}
	if d.ValidBlendOp && !b.validOp {
		b.opRGB = opOr(d.BlendOpRGB)
		b.opAlpha = opOr(d.BlendOpAlpha)
	}
	b.validMode = d.ValidBlendMode
	b.validOp = d.ValidBlendOp
	b.setValid(b.validMode || b.validOp)
}

func factorOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return canonical(BlendFactors, name)
}

func opOr(name string) string {
	if name == "" {
		return BlendOpOff
	}
	return canonical(BlendOps, name)
}

// SetRGBPreset selects an RGB preset. Named presets also set the factors.
func (b *Blend) SetRGBPreset(idx int) error {
	if err := checkIndex("rgb preset", idx, presetNames()); err != nil {
		return err
	}
	b.rgbPreset = idx
	if idx > presetCustom {
		b.srcRGB, b.dstRGB = BlendPresets[idx].Source, BlendPresets[idx].Dest
	}
	b.markDirty()
	return nil
}

// SetAlphaPreset selects an alpha preset. Turning alpha blending on while
// RGB blending is off switches RGB to custom factors.
func (b *Blend) SetAlphaPreset(idx int) error {
	if err := checkIndex("alpha preset", idx, presetNames()); err != nil {
		return err
	}
	b.alphaPreset = idx
	if idx > presetOff {
		b.srcAlpha, b.dstAlpha = BlendPresets[idx].Source, BlendPresets[idx].Dest
		if b.rgbPreset == presetOff {
			b.rgbPreset = presetCustom
		}
	}
	b.markDirty()
	return nil
}

// SetRGBFactors sets the RGB factors and selects the matching preset, or
// Custom when none matches.
func (b *Blend) SetRGBFactors(src, dst string) error {
	s, err := indexOf("blend factor", BlendFactors, src)
	if err != nil {
		return err
	}
	d, err := indexOf("blend factor", BlendFactors, dst)
	if err != nil {
		return err
	}
	b.srcRGB, b.dstRGB = BlendFactors[s], BlendFactors[d]
	b.checkRGBPreset()
	b.markDirty()
	return nil
}

// SetAlphaFactors is SetRGBFactors for the alpha channel.
func (b *Blend) SetAlphaFactors(src, dst string) error {
	s, err := indexOf("blend factor", BlendFactors, src)
	if err != nil {
		return err
	}
	d, err := indexOf("blend factor", BlendFactors, dst)
	if err != nil {
		return err
	}
	b.srcAlpha, b.dstAlpha = BlendFactors[s], BlendFactors[d]
	b.checkAlphaPreset()
	b.markDirty()
	return nil
}

// SetOps sets the RGB and alpha blend operations.
func (b *Blend) SetOps(rgb, alpha string) error {
	r, err := indexOf("blend op", BlendOps, rgb)
	if err != nil {
		return err
	}
	a, err := indexOf("blend op", BlendOps, alpha)
	if err != nil {
		return err
	}
	b.opRGB, b.opAlpha = BlendOps[r], BlendOps[a]
	b.markDirty()
	return nil
}

func (b *Blend) checkRGBPreset() {
	b.rgbPreset = matchPreset(b.srcRGB, b.dstRGB)
}

func (b *Blend) checkAlphaPreset() {
	b.alphaPreset = matchPreset(b.srcAlpha, b.dstAlpha)
	if b.alphaPreset > presetOff && b.rgbPreset == presetOff {
		b.rgbPreset = presetCustom
	}
}

func matchPreset(src, dst string) int {
	for i := presetCustom; i < len(BlendPresets); i++ {
		if BlendPresets[i].Source == src && BlendPresets[i].Dest == dst {
			return i
		}
	}
	return presetCustom
}

func presetNames() []string {
	names := make([]string, len(BlendPresets))
	for i, p := range BlendPresets {
		names[i] = p.Name
	}
	return names
}

// BlendFactorLine renders the Blend line.
func (b *Blend) BlendFactorLine() string {
	switch {
	case b.alphaPreset > presetOff:
		src, dst := "One", "Zero"
		if b.rgbPreset > presetOff {
			src, dst = b.srcRGB, b.dstRGB
		}
		return fmt.Sprintf("Blend %s %s , %s %s", src, dst, b.srcAlpha, b.dstAlpha)
	case b.rgbPreset > presetOff:
		return fmt.Sprintf("Blend %s %s", b.srcRGB, b.dstRGB)
	}
	return "Blend Off"
}

// BlendOpLine renders the BlendOp line.
func (b *Blend) BlendOpLine() string {
	switch {
	case b.opAlpha != BlendOpOff:
		rgb := "Add"
		if b.rgbPreset > presetOff && b.opRGB != BlendOpOff {
			rgb = b.opRGB
		}
		return fmt.Sprintf("BlendOp %s , %s", rgb, b.opAlpha)
	case b.opRGB != BlendOpOff:
		return "BlendOp " + b.opRGB
	}
	return "BlendOp Off"
}

// GenerateShaderData returns the Blend and BlendOp lines.
func (b *Blend) GenerateShaderData() (factor, op string) {
	return b.BlendFactorLine(), b.BlendOpLine()
}

// CopyFrom copies every override and both part flags from o. The module's
// own validity is left as the template set it.
func (b *Blend) CopyFrom(o *Blend) {
	own := b.base
	*b = *o
	b.base = own
	b.dirty = o.dirty
}

func (b *Blend) EncodeRecord(w *record.Writer) {
	w.Bool(fieldValid, b.valid)
	w.Bool("mode_valid", b.validMode)
	if b.validMode {
		w.Int("rgb_preset", b.rgbPreset)
		w.String("src_rgb", b.srcRGB)
		w.String("dst_rgb", b.dstRGB)
		w.Int("alpha_preset", b.alphaPreset)
		w.String("src_alpha", b.srcAlpha)
		w.String("dst_alpha", b.dstAlpha)
	}
	w.Bool("op_valid", b.validOp)
	if b.validOp {
		w.String("op_rgb", b.opRGB)
		w.String("op_alpha", b.opAlpha)
	}
}

func (b *Blend) DecodeRecord(f record.Fields) error {
	mode, err := recordValid(f, "mode_valid", b.validMode)
	if err != nil {
		return err
	}
	if mode {
		src, dst, srcA, dstA := b.srcRGB, b.dstRGB, b.srcAlpha, b.dstAlpha
		rgb, alpha := b.rgbPreset, b.alphaPreset
		for _, err := range []error{
			presetField(f, "rgb_preset", &rgb),
			f.String("src_rgb", &src),
			f.String("dst_rgb", &dst),
			presetField(f, "alpha_preset", &alpha),
			f.String("src_alpha", &srcA),
			f.String("dst_alpha", &dstA),
		} {
			if err != nil {
				return err
			}
		}
		// A named preset without explicit factors brings its own.
		if rgb > presetCustom && rgb < len(BlendPresets) && !f.Has("src_rgb") && !f.Has("dst_rgb") {
			src, dst = BlendPresets[rgb].Source, BlendPresets[rgb].Dest
		}
		if alpha > presetOff && alpha < len(BlendPresets) && !f.Has("src_alpha") && !f.Has("dst_alpha") {
			srcA, dstA = BlendPresets[alpha].Source, BlendPresets[alpha].Dest
			if rgb == presetOff {
				rgb = presetCustom
			}
		}
		if err := b.setMode(rgb, src, dst, alpha, srcA, dstA); err != nil {
			return err
		}
	}
	op, err := recordValid(f, "op_valid", b.validOp)
	if err != nil {
		return err
	}
	if op {
		opRGB, opAlpha := b.opRGB, b.opAlpha
		if err := f.String("op_rgb", &opRGB); err != nil {
			return err
		}
		if err := f.String("op_alpha", &opAlpha); err != nil {
			return err
		}
		return b.setOps(opRGB, opAlpha)
	}
	return nil
}

// setMode stores persisted blend mode values after validating them.
func (b *Blend) setMode(rgb int, src, dst string, alpha int, srcA, dstA string) error {
	names := presetNames()
	if err := checkIndex("rgb preset", rgb, names); err != nil {
		return err
	}
	if err := checkIndex("alpha preset", alpha, names); err != nil {
		return err
	}
	factors := []*string{&src, &dst, &srcA, &dstA}
	for _, f := range factors {
		i, err := indexOf("blend factor", BlendFactors, *f)
		if err != nil {
			return err
		}
		*f = BlendFactors[i]
	}
	b.rgbPreset, b.srcRGB, b.dstRGB = rgb, src, dst
	b.alphaPreset, b.srcAlpha, b.dstAlpha = alpha, srcA, dstA
	return nil
}

func (b *Blend) setOps(rgb, alpha string) error {
	r, err := indexOf("blend op", BlendOps, rgb)
	if err != nil {
		return err
	}
	a, err := indexOf("blend op", BlendOps, alpha)
	if err != nil {
		return err
	}
	b.opRGB, b.opAlpha = BlendOps[r], BlendOps[a]
	return nil
}

func (b *Blend) WriteLegacy(w *legacy.Writer) {
	b.WriteLegacyMode(w)
	b.WriteLegacyOp(w)
}

func (b *Blend) ReadLegacy(r *legacy.Reader) error {
	if err := b.ReadLegacyMode(r); err != nil {
		return err
	}
	return b.ReadLegacyOp(r)
}

// WriteLegacyMode writes the blend mode section on its own. Single-pass
// records store mode and op apart.
func (b *Blend) WriteLegacyMode(w *legacy.Writer) {
	w.Bool(b.validMode)
	if b.validMode {
		w.Int(b.rgbPreset)
		w.String(b.srcRGB)
		w.String(b.dstRGB)
		w.Int(b.alphaPreset)
		w.String(b.srcAlpha)
		w.String(b.dstAlpha)
	}
}

func (b *Blend) ReadLegacyMode(r *legacy.Reader) error {
	if !legacyValid(r, b.validMode) {
		return r.Err()
	}
	rgb, src, dst := r.Int(), r.String(), r.String()
	alpha, srcA, dstA := r.Int(), r.String(), r.String()
	if err := r.Err(); err != nil {
		return err
	}
	return b.setMode(rgb, src, dst, alpha, srcA, dstA)
}

func (b *Blend) WriteLegacyOp(w *legacy.Writer) {
	w.Bool(b.validOp)
	if b.validOp {
		w.String(b.opRGB)
		w.String(b.opAlpha)
	}
}

func (b *Blend) ReadLegacyOp(r *legacy.Reader) error {
	if !legacyValid(r, b.validOp) {
		return r.Err()
	}
	rgb, alpha := r.String(), r.String()
	if err := r.Err(); err != nil {
		return err
	}
	return b.setOps(rgb, alpha)
}
