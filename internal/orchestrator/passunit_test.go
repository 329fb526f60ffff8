package orchestrator_test

import (
	"strings"
	"testing"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/orchestrator"
	"github.com/specialistvlad/shadergen/internal/template"
	"github.com/specialistvlad/shadergen/internal/testutil"
	"github.com/specialistvlad/shadergen/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, guid, body string) *template.Template {
	t.Helper()
	tpl, err := template.Parse("", guid, body)
	require.NoError(t, err)
	return tpl
}

func TestPassUnit_SetTemplate(t *testing.T) {
	t.Parallel()

	unlit := parse(t, testutil.UnlitGUID, testutil.UnlitTemplate)
	multi := parse(t, testutil.MultiPassGUID, testutil.MultiPassTemplate)

	tests := []struct {
		name          string
		rebindTo      *template.Template
		sub, pass     int
		wantErr       string
		wantConnected bool
		wantPorts     []string
	}{
		{
			name:          "same port count keeps connections",
			rebindTo:      unlit,
			wantConnected: true,
			wantPorts:     []string{"Vertex Offset", "Frag Color", "Alpha"},
		},
		{
			name:          "different port count drops connections",
			rebindTo:      multi,
			wantConnected: false,
			wantPorts:     []string{"Color"},
		},
		{
			name:          "out of range leaves the unit alone",
			rebindTo:      unlit,
			pass:          4,
			wantErr:       "has no pass 4 in subshader 0",
			wantConnected: true,
			wantPorts:     []string{"Vertex Offset", "Frag Color", "Alpha"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			ctx, _ := testutil.CaptureLogs(t)
			s := codegen.NewSession()
			n, err := s.Graph.AddNode("half", "test", &literal{value: "0.5", dt: wire.Float})
			require.NoError(t, err)
			u := orchestrator.NewPassUnit(s)
			require.NoError(t, u.SetTemplate(ctx, unlit, 0, 0))
			alpha, ok := u.Port("Alpha")
			require.True(t, ok)
			alpha.Link = &codegen.Link{Node: n}

			// --- Act ---
			err = u.SetTemplate(ctx, tt.rebindTo, tt.sub, tt.pass)

			// --- Assert ---
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, orchestrator.TemplateBound, u.State())
			var names []string
			connected := false
			for _, p := range u.Ports() {
				names = append(names, p.Name)
				connected = connected || p.IsConnected()
			}
			assert.Equal(t, tt.wantPorts, names)
			assert.Equal(t, tt.wantConnected, connected)
		})
	}
}

func TestPassUnit_MainRegistersTemplateProperties(t *testing.T) {
	t.Parallel()

	ctx, logs := testutil.CaptureLogs(t)
	s := codegen.NewSession()
	other := s.NewOwner()
	require.True(t, s.Uniforms.Register(other, "_Color"))

	u := orchestrator.NewPassUnit(s)
	require.NoError(t, u.SetTemplate(ctx, parse(t, testutil.UnlitGUID, testutil.UnlitTemplate), 0, 0))

	assert.True(t, u.IsMain)
	assert.NotEqual(t, codegen.NoOwner, s.Uniforms.CheckOwner("_MainTex"))
	assert.Equal(t, other, s.Uniforms.CheckOwner("_Color"))
	assert.Contains(t, logs.String(), "Template property is already claimed.")
	assert.Contains(t, logs.String(), "property=_Color")

	u.Close()
	assert.Equal(t, codegen.NoOwner, s.Uniforms.CheckOwner("_MainTex"))
	assert.Equal(t, other, s.Uniforms.CheckOwner("_Color"))
}

func TestPassUnit_FillBeforeCollectFails(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.CaptureLogs(t)
	u := orchestrator.NewPassUnit(codegen.NewSession())
	require.NoError(t, u.SetTemplate(ctx, parse(t, testutil.UnlitGUID, testutil.UnlitTemplate), 0, 0))

	err := u.FillPassData(ctx, map[string]string{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot fill data in state template_bound")
}

func TestPassUnit_CollectDataWithoutTemplate(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.CaptureLogs(t)
	u := orchestrator.NewPassUnit(codegen.NewSession())

	assert.ErrorIs(t, u.CollectData(ctx, nil), orchestrator.ErrInvalidTemplate)
	assert.ErrorIs(t, u.SetTemplate(ctx, nil, 0, 0), orchestrator.ErrInvalidTemplate)
	assert.False(t, u.IsValid())
}

func TestPassUnit_SRPDefines(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx, _ := testutil.CaptureLogs(t)
	body := strings.Replace(testutil.UnlitTemplate, `"RenderType"="Opaque"`, `"RenderPipeline"="LightweightPipeline"`, 1)
	body = strings.Replace(body, "Alpha;Float", "Alpha Clip Threshold;Float", 1)
	tpl := parse(t, "srp", body)
	require.True(t, tpl.SRP)

	s := codegen.NewSession()
	n, err := s.Graph.AddNode("clip", "test", &literal{value: "0.3", dt: wire.Float})
	require.NoError(t, err)
	u := orchestrator.NewPassUnit(s)
	require.NoError(t, u.SetTemplate(ctx, tpl, 0, 0))
	port, ok := u.Port("Alpha Clip Threshold")
	require.True(t, ok)
	port.Link = &codegen.Link{Node: n}

	// --- Act ---
	require.NoError(t, u.CollectData(ctx, nil))
	fragments := map[string]string{}
	require.NoError(t, u.FillPassData(ctx, fragments, nil))

	// --- Assert ---
	pragma := fragments[template.PassTagID(0, 0, template.TagPragma)]
	assert.Equal(t, "#define _AlphaClip 1", pragma)
	assert.Equal(t, "0.3", fragments[tpl.SubShaders[0].Passes[0].Ports[2].TagID])
	assert.Equal(t, orchestrator.PassFilled, u.State())
}
