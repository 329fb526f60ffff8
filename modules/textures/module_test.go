package textures_test

import (
	"testing"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/testutil"
	"github.com/specialistvlad/shadergen/internal/wire"
	"github.com/specialistvlad/shadergen/modules/constants"
	"github.com/specialistvlad/shadergen/modules/textures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unlitPass = codegen.PassInfo{
	InterpStart:      1,
	HasInterpolators: true,
	HasVertexData:    true,
	VertexData:       map[string]string{"uv0": "texcoord.xy"},
}

func TestTextureSample_AutomaticUV(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.NewUnitHarness(t, unlitPass, &textures.Module{})
	h.Node("albedo", "texture_sample", `name = "_Albedo"`)

	// --- Act ---
	rgba := h.Fragment("albedo", wire.Float4)
	alpha := h.Fragment("albedo.a", wire.Float)

	// --- Assert ---
	assert.Equal(t, "temp_output_0_0", rgba)
	assert.Equal(t, "temp_output_0_0.a", alpha)
	assert.Equal(t, []string{`_Albedo("Albedo", 2D) = "white" {}`}, h.Collector.Properties())
	assert.Equal(t, []string{"uniform sampler2D _Albedo;", "uniform float4 _Albedo_ST;"}, h.Collector.Uniforms())
	assert.Equal(t, []string{"float2 ase_texcoord : TEXCOORD1;"}, h.Collector.Interpolators())
	assert.Empty(t, h.Collector.VertexData(), "the template declares the texcoord")
	assert.Equal(t, []string{"o.ase_texcoord = v.texcoord.xy;"}, h.Collector.LocalVariables(wire.Vertex))
	assert.Equal(t, []string{
		"float2 uv_Albedo = i.ase_texcoord * _Albedo_ST.xy + _Albedo_ST.zw;",
		"float4 temp_output_0_0 = tex2D( _Albedo, uv_Albedo );",
	}, h.Collector.LocalVariables(wire.Fragment))
}

func TestTextureSample_ConnectedUV(t *testing.T) {
	t.Parallel()

	h := testutil.NewUnitHarness(t, codegen.PassInfo{}, &textures.Module{}, &constants.Module{})
	h.Node("noise", "texture_sample", "name = \"_Noise\"\ndefault = \"black\"")
	h.Node("center", "vector", "value = [0.5, 0.5]")
	h.Connect("center", "noise", "uv")

	got := h.Fragment("noise.r", wire.Float)

	assert.Equal(t, "temp_output_0_0.r", got)
	assert.Equal(t, []string{"float4 temp_output_0_0 = tex2D( _Noise, float2(0.5,0.5) );"}, h.Collector.LocalVariables(wire.Fragment))
	assert.Equal(t, []string{`_Noise("Noise", 2D) = "black" {}`}, h.Collector.Properties())
	assert.Empty(t, h.Collector.Interpolators())
}

func TestTextureSample_VertexStage(t *testing.T) {
	t.Parallel()

	h := testutil.NewUnitHarness(t, codegen.PassInfo{HasVertexData: true}, &textures.Module{})
	h.Node("height", "texture_sample", `name = "_Height"`)

	got, err := h.Generate(wire.Vertex, "height.r", wire.Float)

	require.NoError(t, err)
	assert.Equal(t, "temp_output_0_0.r", got)
	assert.Equal(t, []string{"float2 uv0 : TEXCOORD0;"}, h.Collector.VertexData())
	assert.Empty(t, h.Collector.Interpolators())
	assert.Equal(t, []string{
		"float2 uv_Height = v.uv0 * _Height_ST.xy + _Height_ST.zw;",
		"float4 temp_output_0_0 = tex2Dlod( _Height, float4( uv_Height, 0, 0.0) );",
	}, h.Collector.LocalVariables(wire.Vertex))
}

func TestTextureSample_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown default", func(t *testing.T) {
		t.Parallel()

		h := testutil.NewUnitHarness(t, codegen.PassInfo{}, &textures.Module{})
		_, err := h.NewNode("tex", "texture_sample", "name = \"_T\"\ndefault = \"pink\"")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown default texture 'pink'")
	})

	t.Run("interpolator budget", func(t *testing.T) {
		t.Parallel()

		h := testutil.NewUnitHarness(t, codegen.PassInfo{InterpStart: 4, InterpMax: 4, HasInterpolators: true, HasVertexData: true}, &textures.Module{})
		h.Node("tex", "texture_sample", `name = "_T"`)

		_, err := h.Generate(wire.Fragment, "tex", wire.Float4)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "interpolator 'ase_texcoord' exceeds the budget of 4 slots")
	})
}
