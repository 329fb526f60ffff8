package operators_test

import (
	"testing"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/testutil"
	"github.com/specialistvlad/shadergen/internal/wire"
	"github.com/specialistvlad/shadergen/modules/constants"
	"github.com/specialistvlad/shadergen/modules/operators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHarness(t *testing.T) *testutil.UnitHarness {
	t.Helper()
	return testutil.NewUnitHarness(t, codegen.PassInfo{}, &constants.Module{}, &operators.Module{})
}

func TestOperators_Unconnected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{kind: "add", want: "float temp_output_0_0 = ( 0.0 + 0.0 );"},
		{kind: "subtract", want: "float temp_output_0_0 = ( 0.0 - 0.0 );"},
		{kind: "multiply", want: "float temp_output_0_0 = ( 1.0 * 1.0 );"},
		{kind: "divide", want: "float temp_output_0_0 = ( 1.0 / 1.0 );"},
		{kind: "lerp", want: "float temp_output_0_0 = lerp( 0.0 , 1.0 , 0.5 );"},
		{kind: "saturate", want: "float temp_output_0_0 = saturate( 0.0 );"},
		{kind: "one_minus", want: "float temp_output_0_0 = ( 1.0 - 0.0 );"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.Node("op", tt.kind, `type = "float"`)

			got := h.Fragment("op", wire.Float)

			assert.Equal(t, "temp_output_0_0", got)
			assert.Equal(t, []string{tt.want}, h.Collector.LocalVariables(wire.Fragment))
		})
	}
}

func TestOperators_Chain(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t)
	h.Node("half", "float", "value = 0.5")
	h.Node("tint", "vector", "value = [1, 0, 0]")
	h.Node("scaled", "multiply", `type = "float3"`)
	h.Node("mixed", "lerp", `type = "float3"`)
	h.Connect("tint", "scaled", "a")
	h.Connect("half", "scaled", "b")
	h.Connect("scaled", "mixed", "a")
	h.Connect("tint", "mixed", "b")
	h.Connect("half", "mixed", "alpha")

	// --- Act ---
	got := h.Fragment("mixed", wire.Float4)
	again := h.Fragment("mixed", wire.Float4)

	// --- Assert ---
	assert.Equal(t, "float4( temp_output_3_0 , 0.0 )", got)
	assert.Equal(t, got, again)
	assert.Equal(t, []string{
		"float3 temp_output_2_0 = ( float3(1.0,0.0,0.0) * ( 0.5 ).xxx );",
		"float3 temp_output_3_0 = lerp( temp_output_2_0 , float3(1.0,0.0,0.0) , 0.5 );",
	}, h.Collector.LocalVariables(wire.Fragment))
}

func TestOperators_RejectsNonVectorTypes(t *testing.T) {
	t.Parallel()

	for _, typ := range []string{"float4x4", "sampler2D", "int", "quaternion"} {
		t.Run(typ, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			_, err := h.NewNode("op", "add", `type = "`+typ+`"`)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "node 'op'")
		})
	}
}
