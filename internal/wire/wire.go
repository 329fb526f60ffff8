// Package wire defines the data types carried by ports and the shader
// stage a port is generated for.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is the type of value a port carries.
type DataType int

const (
	Float DataType = iota
	Float2
	Float3
	Float4
	Color
	Int
	Float3x3
	Float4x4
	Sampler2D
	SamplerCube
)

var dataTypeNames = map[DataType]string{
	Float:       "Float",
	Float2:      "Float2",
	Float3:      "Float3",
	Float4:      "Float4",
	Color:       "Color",
	Int:         "Int",
	Float3x3:    "Float3x3",
	Float4x4:    "Float4x4",
	Sampler2D:   "Sampler2D",
	SamplerCube: "SamplerCube",
}

var cgTypes = map[DataType]string{
	Float:       "float",
	Float2:      "float2",
	Float3:      "float3",
	Float4:      "float4",
	Color:       "float4",
	Int:         "int",
	Float3x3:    "float3x3",
	Float4x4:    "float4x4",
	Sampler2D:   "sampler2D",
	SamplerCube: "samplerCUBE",
}

// ParseDataType resolves a type keyword case-insensitively. Both the port
// names used in templates ("Float4", "FLOAT4", "Color") and the shader
// language names ("float4", "sampler2D") are accepted.
func ParseDataType(s string) (DataType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for dt, name := range dataTypeNames {
		if strings.ToLower(name) == key {
			return dt, nil
		}
	}
	for dt, name := range cgTypes {
		if dt == Color {
			continue
		}
		if strings.ToLower(name) == key {
			return dt, nil
		}
	}
	switch key {
	case "half", "fixed":
		return Float, nil
	case "half4", "fixed4":
		return Float4, nil
	case "half3", "fixed3":
		return Float3, nil
	case "half2", "fixed2":
		return Float2, nil
	}
	return Float, fmt.Errorf("unknown data type %q", s)
}

// String returns the port type name.
func (d DataType) String() string {
	if n, ok := dataTypeNames[d]; ok {
		return n
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// CgType returns the shader language type used to declare a value of d.
func (d DataType) CgType() string {
	if n, ok := cgTypes[d]; ok {
		return n
	}
	return "float"
}

// Components returns the number of scalar components of a vector type, or
// zero for matrices and samplers.
func (d DataType) Components() int {
	switch d {
	case Float, Int:
		return 1
	case Float2:
		return 2
	case Float3:
		return 3
	case Float4, Color:
		return 4
	}
	return 0
}

// IsSampler reports whether d is a texture sampler.
func (d DataType) IsSampler() bool {
	return d == Sampler2D || d == SamplerCube
}

const swizzle = "xyzw"

// Cast converts expr from one port type to another. Types that cannot be
// converted (matrices, samplers) are returned unchanged.
func Cast(expr string, from, to DataType) string {
	if from == to {
		return expr
	}
	fc, tc := from.Components(), to.Components()
	if fc == 0 || tc == 0 {
		return expr
	}
	switch {
	case from == Int && to == Float:
		return "(float)" + Paren(expr)
	case from == Float && to == Int:
		return "(int)" + Paren(expr)
	case fc == tc:
		return expr
	case fc == 1:
		return Paren(expr) + "." + strings.Repeat("x", tc)
	case tc < fc:
		return Paren(expr) + "." + swizzle[:tc]
	default:
		pad := strings.Repeat(" , 0.0", tc-fc)
		return fmt.Sprintf("%s( %s%s )", to.CgType(), expr, pad)
	}
}

// Paren wraps expr in parentheses unless it is a plain identifier or
// member access.
func Paren(expr string) string {
	if expr == "" || expr[0] >= '0' && expr[0] <= '9' {
		return "( " + expr + " )"
	}
	for _, r := range expr {
		if !(r == '_' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "( " + expr + " )"
		}
	}
	return expr
}

// FormatFloat renders v as a shader float literal, always with a decimal
// point so it is never read as an integer.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// Category is the shader stage a port is generated for.
type Category int

const (
	Vertex Category = iota
	Fragment
)

// ParseCategory resolves the stage names used by templates.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertex", "vert":
		return Vertex, nil
	case "fragment", "frag":
		return Fragment, nil
	}
	return Fragment, fmt.Errorf("unknown category %q", s)
}

func (c Category) String() string {
	if c == Vertex {
		return "vertex"
	}
	return "fragment"
}
