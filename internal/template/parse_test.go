package template_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/specialistvlad/shadergen/internal/template"
	"github.com/specialistvlad/shadergen/internal/testutil"
	"github.com/specialistvlad/shadergen/internal/wire"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, guid, body string) *template.Template {
	t.Helper()
	tpl, err := template.Parse("", guid, body)
	require.NoError(t, err)
	return tpl
}

func TestParse_SinglePass(t *testing.T) {
	t.Parallel()

	// --- Act ---
	tpl := parseFixture(t, testutil.UnlitGUID, testutil.UnlitTemplate)

	// --- Assert ---
	assert.Equal(t, "Hidden/Templates/Unlit", tpl.Name)
	assert.Equal(t, "Hidden/Templates/Unlit", tpl.DefaultShaderName)
	assert.Equal(t, []string{"_MainTex", "_Color"}, tpl.Properties)
	assert.True(t, tpl.IsSinglePass)
	assert.False(t, tpl.SRP)
	require.Len(t, tpl.SubShaders, 1)

	sub := tpl.SubShaders[0]
	assert.True(t, sub.HasLOD)
	assert.Equal(t, 100, sub.LOD)
	assert.Equal(t, template.DataValid, sub.Modules.Cull.DataCheck)
	assert.Equal(t, "Off", sub.Modules.Cull.Mode)
	assert.Equal(t, []template.Tag{{Name: "RenderType", Value: "Opaque"}}, sub.Modules.Tags.Tags)
	assert.Empty(t, sub.Modules.PragmaTag)

	require.Len(t, sub.Passes, 1)
	pass := sub.Passes[0]
	assert.Equal(t, "Unlit", pass.Name)
	assert.True(t, pass.IsMainPass)
	assert.False(t, pass.IsInvisible)
	assert.Same(t, pass, tpl.MainPass())
	assert.Same(t, pass, tpl.FindPass("Unlit"))

	m := pass.Modules
	assert.True(t, m.HasPragmaTag())
	assert.Equal(t, template.PassTagID(0, 0, template.TagPragma), m.PragmaTag)
	assert.Equal(t, []string{"vertex vert", "fragment frag"}, m.Directives.Pragmas)
	assert.Equal(t, []string{"UnityCG.cginc"}, m.Directives.Includes)
	assert.Equal(t, "3.0", m.ShaderModel.Value)
	assert.Equal(t, []string{"_MainTex", "_Color"}, pass.Globals)

	assert.Equal(t, template.DataValid, m.Blend.DataCheck)
	assert.Equal(t, "SrcAlpha", m.Blend.SourceFactorRGB)
	assert.Equal(t, "OneMinusSrcAlpha", m.Blend.DestFactorRGB)
	assert.False(t, m.Blend.SeparateBlendFactors)
	assert.Equal(t, "Add", m.Blend.BlendOpRGB)
	assert.Equal(t, [4]bool{true, true, true, true}, m.ColorMask.Mask)
	assert.Equal(t, "On", m.Depth.ZWriteMode)
	assert.Equal(t, "LEqual", m.Depth.ZTestMode)
	assert.True(t, m.Depth.ValidOffset)
	assert.Equal(t, template.DataInvalid, m.Cull.DataCheck, "cull is declared on the subshader only")

	wantStencil := template.StencilData{
		DataCheck:       template.DataValid,
		Reference:       2,
		ReadMask:        255,
		WriteMask:       255,
		ComparisonFront: "Always",
		PassFront:       "Replace",
	}
	assert.Equal(t, wantStencil, m.Stencil)
}

func TestParse_Ports(t *testing.T) {
	t.Parallel()

	tpl := parseFixture(t, testutil.UnlitGUID, testutil.UnlitTemplate)
	pass := tpl.MainPass()

	want := []template.PortInfo{
		{Name: "Vertex Offset", DataType: wire.Float3, UniqueID: 0, OrderID: 0, Category: wire.Vertex, Default: "float3(0,0,0)"},
		{Name: "Frag Color", DataType: wire.Float4, UniqueID: 1, OrderID: 1, Category: wire.Fragment, Default: "fixed4(1,0,0,1)"},
		{Name: "Alpha", DataType: wire.Float, UniqueID: 2, OrderID: 2, Category: wire.Fragment, Default: "0.5"},
	}
	got := make([]template.PortInfo, len(pass.Ports))
	for i, p := range pass.Ports {
		p.TagID = ""
		got[i] = p
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ports mismatch (-want +got):\n%s", diff)
	}
	alpha, ok := pass.Port("Alpha")
	require.True(t, ok)
	assert.Equal(t, template.PassTagID(0, 0, "port:Alpha"), alpha.TagID)
}

func TestParse_CodeAndInterpolatorTags(t *testing.T) {
	t.Parallel()

	pass := parseFixture(t, testutil.UnlitGUID, testutil.UnlitTemplate).MainPass()

	require.NotNil(t, pass.VertexCode)
	assert.Equal(t, "v", pass.VertexCode.InVar)
	assert.Equal(t, "appdata", pass.VertexCode.InType)
	assert.Equal(t, "o", pass.VertexCode.OutVar)
	assert.Equal(t, "v2f", pass.VertexCode.OutType)
	require.NotNil(t, pass.FragmentCode)
	assert.Equal(t, "i", pass.FragmentCode.InVar)
	assert.Empty(t, pass.FragmentCode.OutVar)

	require.NotNil(t, pass.Interp)
	assert.Equal(t, 1, pass.Interp.Start)
	assert.True(t, pass.Interp.DynamicMax)
	assert.Equal(t, []string{"sp", "uv0"}, pass.Interp.Used)

	require.NotNil(t, pass.VertexData)
	assert.Equal(t, map[string]string{"p": "vertex", "uv0": "texcoord.xy"}, pass.VertexData.Available)
}

func TestParse_MultiPass(t *testing.T) {
	t.Parallel()

	tpl := parseFixture(t, testutil.MultiPassGUID, testutil.MultiPassTemplate)

	assert.False(t, tpl.IsSinglePass)
	assert.Equal(t, 3, tpl.PassCount())
	require.Len(t, tpl.SubShaders, 2)
	assert.Equal(t, "Back", tpl.SubShaders[0].Modules.Cull.Mode)
	assert.Equal(t, 200, tpl.SubShaders[1].LOD)

	forward, ok := tpl.Pass(0, 0)
	require.True(t, ok)
	assert.True(t, forward.IsMainPass)
	assert.Equal(t, 1, forward.Modules.Stencil.Reference)
	assert.Equal(t, []template.Tag{{Name: "LightMode", Value: "ForwardBase"}}, forward.Modules.Tags.Tags)

	shadow, ok := tpl.Pass(0, 1)
	require.True(t, ok)
	assert.Equal(t, "ShadowCaster", shadow.Name)
	assert.True(t, shadow.IsInvisible)
	assert.False(t, shadow.IsMainPass)
	color, ok := shadow.Port("Color")
	require.True(t, ok)
	assert.True(t, color.HasLink())
	assert.Equal(t, "Forward:Color", color.LinkID)
	assert.Equal(t, 1, color.UniqueID)
	assert.Equal(t, 0, color.OrderID)

	fallback, ok := tpl.Pass(1, 0)
	require.True(t, ok)
	assert.Equal(t, "One", fallback.Modules.Blend.SourceFactorRGB)

	_, ok = tpl.Pass(2, 0)
	assert.False(t, ok)
	_, ok = tpl.Pass(0, 5)
	assert.False(t, ok)
}

func TestParse_SpliceWithoutFragmentsKeepsValidShader(t *testing.T) {
	t.Parallel()

	tpl := parseFixture(t, testutil.UnlitGUID, testutil.UnlitTemplate)

	out := tpl.NewIndex().Splice(nil)

	assert.NotContains(t, out, "/*ase_")
	assert.NotContains(t, out, "/*end*/")
	assert.Contains(t, out, "Cull Off", "kept spans stay in place")
	assert.Contains(t, out, `#pragma target 3.0`)
	assert.Equal(t, testutil.UnlitTemplate, tpl.Body, "the template body is never modified")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "no shader name marker",
			body:    "Shader \"A\" { SubShader { Pass { } } }",
			wantErr: template.ErrNoShaderName,
		},
		{
			name:    "no subshader",
			body:    "Shader /*ase_name*/\"A\"/*end*/\n{\n}\n",
			wantErr: template.ErrNoSubShader,
		},
		{
			name:    "two main passes",
			body:    "Shader /*ase_name*/\"A\"/*end*/\n{\nSubShader\n{\nPass\n{\n/*ase_main_pass*/\n}\nPass\n{\n/*ase_main_pass*/\n}\n}\n}\n",
			wantErr: template.ErrMultipleMainPasses,
		},
		{
			name:    "unbalanced braces",
			body:    "Shader /*ase_name*/\"A\"/*end*/\n{\nSubShader\n{\nPass\n{\n}\n",
			wantMsg: "unbalanced brace",
		},
		{
			name:    "duplicate port",
			body:    "Shader /*ase_name*/\"A\"/*end*/\n{\nSubShader\n{\nPass\n{\n/*ase_frag_out:C;Float*/0/*end*/\n/*ase_frag_out:C;Float*/0/*end*/\n}\n}\n}\n",
			wantMsg: `duplicate port "C"`,
		},
		{
			name:    "unknown port type",
			body:    "Shader /*ase_name*/\"A\"/*end*/\n{\nSubShader\n{\nPass\n{\n/*ase_frag_out:C;Quaternion*/0/*end*/\n}\n}\n}\n",
			wantMsg: `port "C"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			_, err := template.Parse("", "guid", tt.body)

			// --- Assert ---
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParse_UnreadableStateIsFlagged(t *testing.T) {
	t.Parallel()

	body := strings.Replace(testutil.UnlitTemplate, "Cull Off", "Cull [_CullMode]", 1)

	tpl := parseFixture(t, "guid", body)

	assert.Equal(t, template.DataUnreadable, tpl.SubShaders[0].Modules.Cull.DataCheck)
}

func TestParse_RenderPipelineTagMarksSRP(t *testing.T) {
	t.Parallel()

	body := strings.Replace(testutil.UnlitTemplate, `"RenderType"="Opaque"`, `"RenderPipeline"="LightweightPipeline"`, 1)

	tpl := parseFixture(t, "guid", body)

	assert.True(t, tpl.SRP)
	assert.True(t, tpl.MainPass().Modules.SRP)
}
