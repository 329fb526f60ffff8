package renderstate

import (
	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/template"
)

// ShaderModels are the selectable compilation targets.
var ShaderModels = []string{"2.0", "2.5", "3.0", "3.5", "4.0", "4.5", "4.6", "5.0"}

// interpolatorBudget is the number of interpolators each shader model
// allows, indexed like ShaderModels.
var interpolatorBudget = []int{8, 8, 10, 10, 16, 32, 32, 32}

const defaultShaderModel = 2

// InterpolatorBudget returns the interpolator count allowed by model, or
// the default model's budget for unknown models.
func InterpolatorBudget(model string) int {
	if i, ok := lookup(ShaderModels, model); ok {
		return interpolatorBudget[i]
	}
	return interpolatorBudget[defaultShaderModel]
}

type ShaderModel struct {
	base
	idx int
}

func NewShaderModel() *ShaderModel {
	return &ShaderModel{base: base{name: "shadermodel"}, idx: defaultShaderModel}
}

func (s *ShaderModel) Reset()        { s.idx = defaultShaderModel }
func (s *ShaderModel) Value() string { return ShaderModels[s.idx] }

// InterpolatorAmount returns the interpolator budget of the current model.
func (s *ShaderModel) InterpolatorAmount() int { return interpolatorBudget[s.idx] }

func (s *ShaderModel) SetValue(model string) error {
	i, err := indexOf("shader model", ShaderModels, model)
	if err != nil {
		return err
	}
	s.idx = i
	s.markDirty()
	return nil
}

func (s *ShaderModel) ConfigureFromTemplate(d template.ShaderModelData) {
	valid := d.DataCheck == template.DataValid
	if valid && !s.valid {
		if i, ok := lookup(ShaderModels, d.Value); ok {
			s.idx = i
		}
	}
	s.setValid(valid)
}

func (s *ShaderModel) GenerateShaderData() string { return "#pragma target " + s.Value() }

func (s *ShaderModel) CopyFrom(o *ShaderModel) {
	s.idx = o.idx
	s.dirty = o.dirty
}

func (s *ShaderModel) EncodeRecord(w *record.Writer) {
	w.Bool(fieldValid, s.valid)
	if s.valid {
		w.String("target", s.Value())
	}
}

func (s *ShaderModel) DecodeRecord(f record.Fields) error {
	valid, err := recordValid(f, fieldValid, s.valid)
	if err != nil || !valid {
		return err
	}
	target := s.Value()
	if err := f.String("target", &target); err != nil {
		return err
	}
	i, err := indexOf("shader model", ShaderModels, target)
	if err != nil {
		return err
	}
	s.idx = i
	return nil
}

func (s *ShaderModel) WriteLegacy(w *legacy.Writer) {
	w.Bool(s.valid)
	if s.valid {
		w.Int(s.idx)
	}
}

func (s *ShaderModel) ReadLegacy(r *legacy.Reader) error {
	if !legacyValid(r, s.valid) {
		return r.Err()
	}
	idx := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	if err := checkIndex("shader model", idx, ShaderModels); err != nil {
		return err
	}
	s.idx = idx
	return nil
}
