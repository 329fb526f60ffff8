package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/hcladapter"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scaleConfig struct {
	Factor float64 `sgen:"factor"`
}

type scaleUnit struct{ factor float64 }

func (u *scaleUnit) Inputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "in", DataType: wire.Float, Default: "1.0"}}
}

func (u *scaleUnit) Outputs() []codegen.PortDef {
	return []codegen.PortDef{{Name: "out", DataType: wire.Float}, {Name: "neg", DataType: wire.Float}}
}

func (u *scaleUnit) GenerateShaderForOutput(n *codegen.Node, out int, c *codegen.Collector, ignoreLocalVar bool) (string, error) {
	return wire.FormatFloat(u.factor), nil
}

func testRegistry() *registry.Registry {
	r := registry.New()
	r.RegisterUnit("scale", &registry.RegisteredUnit{
		NewConfig: func() any { return new(scaleConfig) },
		New: func(_ context.Context, _ *codegen.Session, cfg any) (codegen.Unit, error) {
			return &scaleUnit{factor: cfg.(*scaleConfig).Factor}, nil
		},
	})
	return r
}

func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

func scaleNode(t *testing.T, name string, inputs map[string]string) *config.Node {
	return &config.Node{Kind: "scale", Name: name, Inputs: inputs, Arguments: map[string]hcl.Expression{"factor": expr(t, "2")}}
}

func TestBuildStatic(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := &config.Model{Nodes: []*config.Node{
		scaleNode(t, "a", nil),
		scaleNode(t, "b", map[string]string{"in": "a.neg"}),
	}}
	s := codegen.NewSession()

	// --- Act ---
	err := BuildStatic(context.Background(), model, testRegistry(), hcladapter.NewConverter(), s)

	// --- Assert ---
	require.NoError(t, err)
	b, ok := s.Graph.Node("b")
	require.True(t, ok)
	in, ok := b.Input("in")
	require.True(t, ok)
	require.True(t, in.IsConnected())
	assert.Equal(t, "a", in.Link.Node.Name)
	assert.Equal(t, 1, in.Link.Output)
	assert.Equal(t, 2.0, b.Unit.(*scaleUnit).factor)
}

func TestBuildStatic_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		nodes   func(t *testing.T) []*config.Node
		wantErr string
		isCycle bool
	}{
		{
			name:    "unknown kind",
			nodes:   func(t *testing.T) []*config.Node { return []*config.Node{{Kind: "nope", Name: "a"}} },
			wantErr: "unknown kind 'nope'",
		},
		{
			name: "bad argument",
			nodes: func(t *testing.T) []*config.Node {
				return []*config.Node{{Kind: "scale", Name: "a", Arguments: map[string]hcl.Expression{"factor": expr(t, `"x"`)}}}
			},
			wantErr: "node 'a': failed to decode argument 'factor'",
		},
		{
			name: "unknown upstream node",
			nodes: func(t *testing.T) []*config.Node {
				return []*config.Node{scaleNode(t, "alpha", nil), scaleNode(t, "b", map[string]string{"in": "alp"})}
			},
			wantErr: "unknown node 'alp' (did you mean 'alpha'?)",
		},
		{
			name: "unknown output",
			nodes: func(t *testing.T) []*config.Node {
				return []*config.Node{scaleNode(t, "a", nil), scaleNode(t, "b", map[string]string{"in": "a.rgb"})}
			},
			wantErr: "node 'a' has no output 'rgb'",
		},
		{
			name: "unknown input",
			nodes: func(t *testing.T) []*config.Node {
				return []*config.Node{scaleNode(t, "a", nil), scaleNode(t, "b", map[string]string{"uv": "a"})}
			},
			wantErr: "node 'b' has no input 'uv'",
		},
		{
			name: "cycle",
			nodes: func(t *testing.T) []*config.Node {
				return []*config.Node{scaleNode(t, "a", map[string]string{"in": "b"}), scaleNode(t, "b", map[string]string{"in": "a"})}
			},
			wantErr: "a -> b -> a",
			isCycle: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			model := &config.Model{Nodes: tt.nodes(t)}
			err := BuildStatic(context.Background(), model, testRegistry(), hcladapter.NewConverter(), codegen.NewSession())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.isCycle, errors.Is(err, codegen.ErrCycle))
		})
	}
}

func TestParseRef(t *testing.T) {
	t.Parallel()

	node, out := ParseRef(" tint.rgb ")
	assert.Equal(t, "tint", node)
	assert.Equal(t, "rgb", out)
	node, out = ParseRef("tint")
	assert.Equal(t, "tint", node)
	assert.Empty(t, out)
}
