package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want DataType
	}{
		{"Float", Float},
		{"FLOAT4", Float4},
		{"float3", Float3},
		{"Color", Color},
		{"sampler2D", Sampler2D},
		{"samplerCUBE", SamplerCube},
		{"half4", Float4},
		{" int ", Int},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDataType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDataType("quaternion")
	assert.ErrorContains(t, err, "unknown data type")
}

func TestCast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expr     string
		from, to DataType
		want     string
	}{
		{"same type", "a", Float3, Float3, "a"},
		{"color is float4", "_Tint", Color, Float4, "_Tint"},
		{"scalar splat", "0.5", Float, Float4, "( 0.5 ).xxxx"},
		{"expression splat", "a * b", Float, Float3, "( a * b ).xxx"},
		{"truncate", "c", Float4, Float3, "c.xyz"},
		{"to scalar", "c", Float4, Float, "c.x"},
		{"widen", "uv", Float2, Float4, "float4( uv , 0.0 , 0.0 )"},
		{"int to float", "i", Int, Float, "(float)i"},
		{"sampler unchanged", "_MainTex", Sampler2D, Float4, "_MainTex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Cast(tt.expr, tt.from, tt.to))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.5", FormatFloat(0.5))
	assert.Equal(t, "1.0", FormatFloat(1))
	assert.Equal(t, "-2.0", FormatFloat(-2))
	assert.Equal(t, "1e-07", FormatFloat(1e-7))
}

func TestDataTypeAccessors(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "float4", Color.CgType())
	assert.Equal(t, 4, Color.Components())
	assert.Equal(t, 0, Float4x4.Components())
	assert.True(t, SamplerCube.IsSampler())
	assert.Equal(t, "Float2", Float2.String())
}

func TestParseCategory(t *testing.T) {
	t.Parallel()
	c, err := ParseCategory("vert")
	require.NoError(t, err)
	assert.Equal(t, Vertex, c)
	assert.Equal(t, "fragment", Fragment.String())
	_, err = ParseCategory("geometry")
	assert.Error(t, err)
}
