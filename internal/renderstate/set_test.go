package renderstate_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/shadergen/internal/legacy"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/renderstate"
	"github.com/specialistvlad/shadergen/internal/template"
	"github.com/specialistvlad/shadergen/internal/testutil"
	"github.com/specialistvlad/shadergen/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func unlitSets(t *testing.T) (sub, pass *renderstate.Set) {
	t.Helper()
	tpl, err := template.Parse("", testutil.UnlitGUID, testutil.UnlitTemplate)
	require.NoError(t, err)
	sub = renderstate.NewSet(renderstate.LevelSubShader)
	sub.FetchDataFromTemplate(&tpl.SubShaders[0].Modules)
	pass = renderstate.NewSet(renderstate.LevelPass)
	pass.FetchDataFromTemplate(&tpl.MainPass().Modules)
	return sub, pass
}

// decodeModules parses the module blocks written by EncodeRecords.
func decodeModules(t *testing.T, src []byte) map[string]record.Fields {
	t.Helper()
	file, diags := hclparse.NewParser().ParseHCL(src, "modules.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	out := map[string]record.Fields{}
	for _, block := range file.Body.(*hclsyntax.Body).Blocks {
		require.Equal(t, renderstate.ModuleBlock, block.Type)
		require.Len(t, block.Labels, 2)
		fields, diags := record.FromBody(block.Body)
		require.False(t, diags.HasErrors(), diags.Error())
		out[block.Labels[1]] = fields
	}
	return out
}

func customize(t *testing.T, s *renderstate.Set) {
	t.Helper()
	require.NoError(t, s.Blend.SetRGBPreset(4))
	require.NoError(t, s.Blend.SetOps("Max", "OFF"))
	s.ColorMask.SetMask([4]bool{true, true, true, false})
	require.NoError(t, s.Depth.SetZTest("Always"))
	s.Depth.SetOffset(true, 1, 2)
	s.Stencil.SetMasks(7, 255, 3)
	require.NoError(t, s.Stencil.SetBack("Never", "", "", ""))
	require.NoError(t, s.ShaderModel.SetValue("4.5"))
	s.Pragmas.Add("multi_compile_fog")
	s.Defines.Add("_FOO 1")
}

func TestSet_FetchDataFromTemplate(t *testing.T) {
	t.Parallel()

	sub, pass := unlitSets(t)

	assert.True(t, sub.HasValidData)
	assert.True(t, sub.Cull.IsValid())
	assert.False(t, sub.Blend.IsValid())
	assert.False(t, sub.Pragmas.IsValid(), "the subshader has no pragma marker")

	assert.True(t, pass.HasValidData)
	assert.Equal(t, template.PassTagID(0, 0, template.TagPragma), pass.PragmaTag)
	assert.True(t, pass.Pragmas.IsValid())
	assert.False(t, pass.Cull.IsValid())
	assert.Equal(t, renderstate.CullOff, pass.EffectiveCull(sub), "stencil follows the subshader cull")
	assert.Equal(t, renderstate.CullBack, renderstate.NewSet(renderstate.LevelPass).EffectiveCull(nil))

	want := map[string]string{
		template.SpanBlendMode:   "Blend SrcAlpha OneMinusSrcAlpha",
		template.SpanBlendOp:     "BlendOp Add",
		template.SpanColorMask:   "ColorMask RGBA",
		template.SpanZWrite:      "ZWrite On",
		template.SpanZTest:       "ZTest LEqual",
		template.SpanOffset:      "Offset 0 , 0",
		template.SpanStencil:     "Stencil\n{\n\tRef 2\n\tPass Replace\n}\n",
		template.SpanShaderModel: "#pragma target 3.0",
	}
	if diff := cmp.Diff(want, pass.RenderStates(pass.EffectiveCull(sub))); diff != "" {
		t.Errorf("render states mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, pass.IsDirty())
}

func TestSet_RecordRoundTrip(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	_, pass := unlitSets(t)
	customize(t, pass)
	f := hclwrite.NewEmptyFile()
	pass.EncodeRecords(f.Body())

	_, restored := unlitSets(t)

	// --- Act ---
	restored.DecodeRecords(context.Background(), decodeModules(t, f.Bytes()))

	// --- Assert ---
	assert.Equal(t, pass.RenderStates(renderstate.CullOff), restored.RenderStates(renderstate.CullOff))
	assert.Equal(t, pass.DirectiveLines(), restored.DirectiveLines())
	assert.Equal(t, []string{"#define _FOO 1", "#pragma multi_compile_fog"}, restored.DirectiveLines())
}

func TestSet_LegacyRoundTrip(t *testing.T) {
	t.Parallel()

	_, pass := unlitSets(t)
	customize(t, pass)
	w := legacy.NewWriter()
	pass.WriteLegacy(w)

	_, restored := unlitSets(t)
	r := legacy.NewReader(legacy.Split(w.Encode()), version.Current)
	failed := restored.ReadLegacy(context.Background(), r)

	assert.Zero(t, failed)
	assert.Zero(t, r.Remaining(), "every written field is consumed")
	assert.Equal(t, pass.RenderStates(renderstate.CullOff), restored.RenderStates(renderstate.CullOff))
	assert.Equal(t, pass.DirectiveLines(), restored.DirectiveLines())
}

func TestSet_LegacyVersionGating(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Before validity flags existed only declared modules were written: the
	// subshader declares cull, tags, and nothing else.
	sub, _ := unlitSets(t)
	fields := []string{
		"Front",             // cull
		"1", "Queue:Geometry", // tags
		"0", "0", "0", // defines, pragmas, includes
	}
	r := legacy.NewReader(fields, version.ModuleValidityFlag)

	// --- Act ---
	failed := sub.ReadLegacy(context.Background(), r)

	// --- Assert ---
	assert.Zero(t, failed)
	assert.Zero(t, r.Remaining())
	assert.Equal(t, "Front", sub.Cull.Mode())
	assert.Equal(t, []template.Tag{{Name: "RenderType", Value: "Opaque"}, {Name: "Queue", Value: "Geometry"}}, sub.Tags.Tags())
	assert.Equal(t, "Blend Off", sub.Blend.BlendFactorLine(), "undeclared modules keep their defaults")
	assert.Equal(t, 255, sub.Stencil.ReadMask())
}

func TestSet_DecodeFailureIsIsolated(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	_, pass := unlitSets(t)
	src := []byte(`
module "pass" "blend" {
  mode_valid = true
  rgb_preset = 4
  src_rgb    = "NotAFactor"
}
module "pass" "colormask" {
  valid = true
  mask  = [false, true, false, true]
}
module "pass" "mystery" {
  valid = true
}
`)
	logs := &testutil.SafeBuffer{}
	ctx := testutil.ContextWithLogger(context.Background(), logs)

	// --- Act ---
	pass.DecodeRecords(ctx, decodeModules(t, src))

	// --- Assert ---
	assert.Equal(t, "Blend Off", pass.Blend.BlendFactorLine(), "a failed module falls back to defaults")
	assert.Equal(t, "ColorMask GA", pass.ColorMask.GenerateShaderData(), "later modules still load")
	assert.Contains(t, logs.String(), "module=blend")
	assert.Contains(t, logs.String(), "module=mystery")
}

func TestSet_CopyFromOnlyDirty(t *testing.T) {
	t.Parallel()

	_, src := unlitSets(t)
	_, dst := unlitSets(t)
	require.NoError(t, src.Blend.SetRGBPreset(4))
	require.NoError(t, dst.ShaderModel.SetValue("5.0"))
	dst.SetDirty(false)
	require.NoError(t, dst.Depth.SetZWrite("Off"))

	dst.CopyFrom(src)

	assert.Equal(t, "Blend One One", dst.Blend.BlendFactorLine())
	assert.Equal(t, "#pragma target 5.0", dst.ShaderModel.GenerateShaderData(), "clean modules are not copied")
	assert.Equal(t, "ZWrite Off", dst.Depth.ZWriteLine())

	dst.SetDirty(false)
	assert.False(t, dst.IsDirty())
	dst.SetDirty(true)
	assert.True(t, dst.Cull.IsDirty())
}

func TestSet_ApplyOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records map[string]record.Fields
		check   func(t *testing.T, s *renderstate.Set)
		wantErr string
	}{
		{
			name: "decoded modules become dirty",
			records: map[string]record.Fields{
				"blend":   record.NewFields(map[string]cty.Value{"rgb_preset": cty.StringVal("Additive")}),
				"pragmas": record.NewFields(map[string]cty.Value{"items": cty.ListVal([]cty.Value{cty.StringVal("multi_compile_fog")})}),
			},
			check: func(t *testing.T, s *renderstate.Set) {
				assert.Equal(t, "Blend One One", s.Blend.BlendFactorLine())
				assert.True(t, s.Blend.IsDirty())
				assert.False(t, s.Depth.IsDirty())
				assert.Equal(t, []string{"#pragma multi_compile_fog"}, s.DirectiveLines())
			},
		},
		{
			name:    "unknown module",
			records: map[string]record.Fields{"blnd": record.NewFields(nil)},
			wantErr: "unknown pass module 'blnd' (did you mean 'blend'?)",
		},
		{
			name:    "bad value",
			records: map[string]record.Fields{"depth": record.NewFields(map[string]cty.Value{"ztest": cty.StringVal("Sometimes")})},
			wantErr: "pass module 'depth'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			_, pass := unlitSets(t)
			pass.SetDirty(false)

			// --- Act ---
			err := pass.ApplyOverrides(tt.records)

			// --- Assert ---
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, pass)
		})
	}
}

func TestSet_CopyFromCarriesDirectives(t *testing.T) {
	t.Parallel()

	_, src := unlitSets(t)
	_, dst := unlitSets(t)
	src.Includes.Add("Lighting.cginc")
	src.SetDirty(false)

	dst.CopyFrom(src)

	assert.Equal(t, []string{`#include "Lighting.cginc"`}, dst.DirectiveLines())
}
