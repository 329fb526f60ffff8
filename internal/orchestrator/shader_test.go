package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/orchestrator"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/template"
	"github.com/specialistvlad/shadergen/internal/testutil"
	"github.com/specialistvlad/shadergen/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// literal returns its value inline.
type literal struct {
	value string
	dt    wire.DataType
}

func (u *literal) Inputs() []codegen.PortDef { return nil }

func (u *literal) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: u.dt}}
}

func (u *literal) GenerateShaderForOutput(*codegen.Node, int, *codegen.Collector, bool) (string, error) {
	return u.value, nil
}

// sum adds its two float inputs into a local variable.
type sum struct{}

func (sum) Inputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "a", DataType: wire.Float, Default: "0.0"}, {Name: "b", DataType: wire.Float, Default: "0.0"}}
}

func (sum) Outputs() []codegen.PortDef { return []codegen.PortDef{{Name: "out", DataType: wire.Float}} }

func (sum) GenerateShaderForOutput(n *codegen.Node, out int, c *codegen.Collector, ignoreLocalVar bool) (string, error) {
	a, err := c.GeneratePortInstructions(n.InputAt(0))
	if err != nil {
		return "", err
	}
	b, err := c.GeneratePortInstructions(n.InputAt(1))
	if err != nil {
		return "", err
	}
	expr := fmt.Sprintf("%s + %s", a, b)
	if ignoreLocalVar {
		return expr, nil
	}
	return c.RegisterLocalVariable(n, out, wire.Float, expr), nil
}

// vertexColor reads the mesh vertex color, interpolated in the fragment
// stage.
type vertexColor struct{}

func (vertexColor) Inputs() []codegen.PortDef { return nil }

func (vertexColor) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: wire.Float4}}
}

func (vertexColor) GenerateShaderForOutput(_ *codegen.Node, _ int, c *codegen.Collector, _ bool) (string, error) {
	expr, err := c.AddVertexData("color", wire.Float4, "COLOR")
	if err != nil || c.Category() == wire.Vertex {
		return expr, err
	}
	return c.Interpolate("ase_color", wire.Float4, expr)
}

func library(t *testing.T) *template.Library {
	t.Helper()
	lib := template.NewLibrary()
	for guid, body := range map[string]string{
		testutil.UnlitGUID:     testutil.UnlitTemplate,
		testutil.MultiPassGUID: testutil.MultiPassTemplate,
	} {
		tpl, err := template.Parse("", guid, body)
		require.NoError(t, err)
		require.NoError(t, lib.Add(tpl))
	}
	return lib
}

func newShader(t *testing.T, ctx context.Context, s *codegen.Session, guid string) *orchestrator.Shader {
	t.Helper()
	sh := orchestrator.NewShader("Custom/Tinted", s)
	require.NoError(t, sh.AssignTemplate(ctx, library(t), guid))
	return sh
}

func addNode(t *testing.T, g *codegen.Graph, name string, u codegen.Unit) *codegen.Node {
	t.Helper()
	n, err := g.AddNode(name, "test", u)
	require.NoError(t, err)
	return n
}

func TestBuildShader_UnconnectedDefaults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx, _ := testutil.CaptureLogs(t)
	sh := newShader(t, ctx, codegen.NewSession(), testutil.UnlitGUID)

	// --- Act ---
	text, err := sh.BuildShader(ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, text, `Shader "Custom/Tinted"`)
	assert.Contains(t, text, "myColorVar.a *= 0.5;")
	assert.Contains(t, text, "myColorVar = fixed4(1,0,0,1);")
	assert.Contains(t, text, "v.vertex.xyz += float3(0,0,0);")
	assert.Contains(t, text, "v2f vert ( appdata v )")
	assert.Contains(t, text, `Name "Unlit"`)
	assert.Contains(t, text, "Cull Off")
	assert.Contains(t, text, "Blend SrcAlpha OneMinusSrcAlpha")
	assert.NotContains(t, text, "uniform float")
	assert.NotContains(t, text, "/*ase_")
	assert.NotContains(t, text, "/*end*/")
}

func TestBuildShader_SharedUpstreamEmittedOnce(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx, _ := testutil.CaptureLogs(t)
	s := codegen.NewSession()
	quarter := addNode(t, s.Graph, "quarter", &literal{value: "0.25", dt: wire.Float})
	shared := addNode(t, s.Graph, "shared", sum{})
	scaled := addNode(t, s.Graph, "scaled", sum{})
	require.NoError(t, s.Graph.Connect(quarter, "out", shared, "a"))
	require.NoError(t, s.Graph.Connect(quarter, "out", shared, "b"))
	require.NoError(t, s.Graph.Connect(shared, "out", scaled, "a"))
	require.NoError(t, s.Graph.Connect(shared, "out", scaled, "b"))

	sh := newShader(t, ctx, s, testutil.UnlitGUID)
	unit, err := sh.Unit("Unlit")
	require.NoError(t, err)
	color, ok := unit.Port("Frag Color")
	require.True(t, ok)
	color.Link = &codegen.Link{Node: scaled}
	alpha, ok := unit.Port("Alpha")
	require.True(t, ok)
	alpha.Link = &codegen.Link{Node: shared}

	// --- Act ---
	text, err := sh.BuildShader(ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(text, "float temp_output_1_0 = 0.25 + 0.25;"))
	assert.Contains(t, text, "\t\t\t\tfloat temp_output_1_0 = 0.25 + 0.25;\n\t\t\t\tfloat temp_output_2_0 = temp_output_1_0 + temp_output_1_0;\n")
	assert.Contains(t, text, "myColorVar = temp_output_2_0.xxxx;")
	assert.Contains(t, text, "myColorVar.a *= temp_output_1_0;")
	assert.Equal(t, orchestrator.PassFilled, unit.State())
}

func TestBuildShader_RebuildIsStable(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.CaptureLogs(t)
	s := codegen.NewSession()
	half := addNode(t, s.Graph, "half", &literal{value: "0.5", dt: wire.Float})
	doubled := addNode(t, s.Graph, "doubled", sum{})
	require.NoError(t, s.Graph.Connect(half, "out", doubled, "a"))
	sh := newShader(t, ctx, s, testutil.UnlitGUID)
	unit, err := sh.Unit("Unlit")
	require.NoError(t, err)
	alpha, _ := unit.Port("Alpha")
	alpha.Link = &codegen.Link{Node: doubled}

	first, err := sh.BuildShader(ctx)
	require.NoError(t, err)
	second, err := sh.BuildShader(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "float temp_output_1_0 = 0.5 + 0.0;")
}

func TestBuildShader_MultiPass(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx, _ := testutil.CaptureLogs(t)
	s := codegen.NewSession()
	addNode(t, s.Graph, "grey", &literal{value: "float4(0.5,0.5,0.5,1)", dt: wire.Float4})
	sh := newShader(t, ctx, s, testutil.MultiPassGUID)

	cfg := &config.Shader{
		Name:   "Custom/Tinted",
		LOD:    300,
		HasLOD: true,
		Passes: []*config.Pass{{
			Name:  "Forward",
			Ports: map[string]string{"Color": "grey"},
			Modules: []*config.ModuleOverride{{
				Level:  "pass",
				Name:   "pragmas",
				Fields: record.NewFields(map[string]cty.Value{"items": cty.ListVal([]cty.Value{cty.StringVal("multi_compile_fog")})}),
			}},
		}},
	}
	require.NoError(t, orchestrator.Bind(ctx, sh, cfg))

	// --- Act ---
	text, err := sh.BuildShader(ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(text, "return float4(0.5,0.5,0.5,1);"), "the hidden pass reads the linked port")
	assert.Contains(t, text, "return fixed4(1,1,1,1);", "the fallback subshader keeps its default")
	assert.Equal(t, 2, strings.Count(text, "#pragma multi_compile_fog"), "the hidden pass renders the linked pass's pragmas")
	assert.Contains(t, text, "LOD 300")
	assert.NotContains(t, text, "LOD 200")
	for _, name := range []string{"Forward", "ShadowCaster", "Fallback"} {
		assert.Contains(t, text, `Name "`+name+`"`)
	}
	assert.NotContains(t, text, "/*ase_hide_pass*/")

	units := sh.Units()
	require.Len(t, units, 3)
	assert.True(t, units[0].IsMain)
	assert.True(t, units[1].IsInvisible)
	assert.Equal(t, 1, units[2].SubShaderIndex())
}

func TestBuildShader_BrokenLinkIsSkipped(t *testing.T) {
	t.Parallel()

	ctx, logs := testutil.CaptureLogs(t)
	lib := template.NewLibrary()
	body := strings.Replace(testutil.MultiPassTemplate, "Forward:Color", "Missing:Color", 1)
	tpl, err := template.Parse("", testutil.MultiPassGUID, body)
	require.NoError(t, err)
	require.NoError(t, lib.Add(tpl))
	sh := orchestrator.NewShader("Custom/Broken", codegen.NewSession())
	require.NoError(t, sh.AssignTemplate(ctx, lib, testutil.MultiPassGUID))

	text, err := sh.BuildShader(ctx)

	require.NoError(t, err)
	assert.Contains(t, text, "return fixed4(0,0,0,0);")
	assert.Contains(t, logs.String(), "Linked pass not found, skipping.")
}

func TestBuildShader_InvalidTemplate(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.CaptureLogs(t)
	sh := orchestrator.NewShader("Custom/Lost", codegen.NewSession())

	err := sh.AssignTemplate(ctx, library(t), "Single Pass/Unlt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, orchestrator.ErrInvalidTemplate))
	assert.True(t, errors.Is(err, template.ErrTemplateNotFound))
	assert.False(t, sh.IsValid())

	_, err = sh.BuildShader(ctx)
	assert.ErrorIs(t, err, orchestrator.ErrInvalidTemplate)

	require.NoError(t, sh.AssignTemplate(ctx, library(t), testutil.UnlitGUID))
	_, err = sh.BuildShader(ctx)
	assert.NoError(t, err, "assigning a valid template makes the shader buildable again")
}

func TestBuildShader_Cycle(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.CaptureLogs(t)
	s := codegen.NewSession()
	a := addNode(t, s.Graph, "a", sum{})
	b := addNode(t, s.Graph, "b", sum{})
	require.NoError(t, s.Graph.Connect(a, "out", b, "a"))
	require.NoError(t, s.Graph.Connect(b, "out", a, "a"))
	sh := newShader(t, ctx, s, testutil.UnlitGUID)

	_, err := sh.BuildShader(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, codegen.ErrCycle)
}

func TestBind_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pass    *config.Pass
		wantErr string
	}{
		{
			name:    "unknown pass",
			pass:    &config.Pass{Name: "Unlt"},
			wantErr: "has no pass 'Unlt' (did you mean 'Unlit'?)",
		},
		{
			name:    "unknown port",
			pass:    &config.Pass{Name: "Unlit", Ports: map[string]string{"Alpa": "half"}},
			wantErr: "unknown port 'Alpa' (did you mean 'Alpha'?)",
		},
		{
			name:    "unknown node",
			pass:    &config.Pass{Name: "Unlit", Ports: map[string]string{"Alpha": "hlf"}},
			wantErr: "port 'Alpha': unknown node 'hlf'",
		},
		{
			name: "bad module override",
			pass: &config.Pass{Name: "Unlit", Modules: []*config.ModuleOverride{{
				Level:  "subshader",
				Name:   "cull",
				Fields: record.NewFields(map[string]cty.Value{"mode": cty.StringVal("Sideways")}),
			}}},
			wantErr: "subshader module 'cull'",
		},
		{
			name: "override given twice",
			pass: &config.Pass{Name: "Unlit", Modules: []*config.ModuleOverride{
				{Level: "pass", Name: "blend", Fields: record.NewFields(nil)},
				{Level: "pass", Name: "blend", Fields: record.NewFields(nil)},
			}},
			wantErr: "pass module 'blend' is overridden twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, _ := testutil.CaptureLogs(t)
			s := codegen.NewSession()
			addNode(t, s.Graph, "half", &literal{value: "0.5", dt: wire.Float})
			sh := newShader(t, ctx, s, testutil.UnlitGUID)

			err := orchestrator.Bind(ctx, sh, &config.Shader{Name: sh.Name, Passes: []*config.Pass{tt.pass}})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBind_SubShaderOverride(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.CaptureLogs(t)
	sh := newShader(t, ctx, codegen.NewSession(), testutil.UnlitGUID)

	err := orchestrator.Bind(ctx, sh, &config.Shader{Name: sh.Name, Passes: []*config.Pass{{
		Name: "Unlit",
		Modules: []*config.ModuleOverride{
			{Level: "subshader", Name: "cull", Fields: record.NewFields(map[string]cty.Value{"mode": cty.StringVal("front")})},
			{Level: "pass", Name: "blend", Fields: record.NewFields(map[string]cty.Value{"rgb_preset": cty.StringVal("Additive")})},
		},
	}}})
	require.NoError(t, err)
	text, err := sh.BuildShader(ctx)

	require.NoError(t, err)
	assert.Contains(t, text, "Cull Front")
	assert.Contains(t, text, "Blend One One")
}

func TestShader_OverridesSurviveTemplateChange(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx, logs := testutil.CaptureLogs(t)
	sh := newShader(t, ctx, codegen.NewSession(), testutil.UnlitGUID)
	unit, err := sh.Unit("Unlit")
	require.NoError(t, err)
	require.NoError(t, unit.PassModules.Depth.SetZWrite("Off"))
	alpha, _ := unit.Port("Alpha")
	alpha.Default = "0.25"

	reparsed, err := template.Parse("Unlit Copy", "copy", testutil.UnlitTemplate)
	require.NoError(t, err)

	// --- Act ---
	require.NoError(t, sh.SetTemplate(ctx, reparsed))
	text, err := sh.BuildShader(ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, text, "ZWrite Off")
	assert.Contains(t, text, "myColorVar.a *= 0.5;", "port defaults follow the template")
	assert.Contains(t, logs.String(), "Shader template changed.")
	same, _ := sh.Unit("Unlit")
	assert.Same(t, unit, same, "an unchanged pass count rebinds units in place")
}

func TestShader_PassCountChangeRebuilds(t *testing.T) {
	t.Parallel()

	ctx, logs := testutil.CaptureLogs(t)
	lib := library(t)
	sh := orchestrator.NewShader("Custom/Switch", codegen.NewSession())
	require.NoError(t, sh.AssignTemplate(ctx, lib, testutil.UnlitGUID))
	require.Len(t, sh.Units(), 1)

	require.NoError(t, sh.AssignTemplate(ctx, lib, testutil.MultiPassGUID))

	assert.Len(t, sh.Units(), 3)
	assert.Contains(t, logs.String(), "Pass layout changed, rebuilding pass units.")
	assert.Equal(t, "Forward", sh.MainUnit().OriginalPassName)
}

func TestShader_SameCountDifferentLayoutRebuilds(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx, logs := testutil.CaptureLogs(t)
	merged := strings.Replace(testutil.MultiPassTemplate, "\t}\n\n\tSubShader\n\t{\n\t\tLOD 200\n", "", 1)
	single, err := template.Parse("Merged", "merged", merged)
	require.NoError(t, err)
	require.Len(t, single.SubShaders, 1)
	require.Equal(t, 3, single.PassCount())

	sh := newShader(t, ctx, codegen.NewSession(), testutil.MultiPassGUID)
	_, err = sh.BuildShader(ctx)
	require.NoError(t, err)

	// --- Act ---
	err = sh.SetTemplate(ctx, single)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Pass layout changed, rebuilding pass units.")
	units := sh.Units()
	require.Len(t, units, 3)
	for i, u := range units {
		assert.Equal(t, 0, u.SubShaderIndex())
		assert.Equal(t, i, u.PassIndex())
	}
	text, err := sh.BuildShader(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, `Name "Fallback"`)
	assert.Equal(t, 1, strings.Count(text, "SubShader"))
}

func TestBuildShader_InterpolatorSlots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		guid     string
		port     string
		wantErr  error
		wantText []string
	}{
		{
			name: "pass with slots",
			guid: testutil.UnlitGUID,
			port: "Frag Color",
			wantText: []string{
				"float4 ase_color : TEXCOORD1;",
				"float4 color : COLOR;",
				"o.ase_color = v.color;",
				"myColorVar = i.ase_color;",
			},
		},
		{
			name:    "pass without slots",
			guid:    testutil.MultiPassGUID,
			port:    "Color",
			wantErr: codegen.ErrNoVertexDataSlot,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			ctx, _ := testutil.CaptureLogs(t)
			s := codegen.NewSession()
			vc := addNode(t, s.Graph, "vc", vertexColor{})
			sh := newShader(t, ctx, s, tt.guid)
			port, ok := sh.MainUnit().Port(tt.port)
			require.True(t, ok)
			port.Link = &codegen.Link{Node: vc}

			// --- Act ---
			text, err := sh.BuildShader(ctx)

			// --- Assert ---
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, text)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantText {
				assert.Contains(t, text, want)
			}
		})
	}
}
