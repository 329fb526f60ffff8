package template

import (
	"fmt"
	"regexp"
)

// Marker strings recognised in template bodies. They are matched verbatim.
const (
	TagShaderName          = "/*ase_name*/"
	TagLocalVar            = "/*ase_local_var*/"
	TagPragma              = "/*ase_pragma*/"
	TagPass                = "/*ase_pass*/"
	TagProperties          = "/*ase_props*/\n"
	TagGlobals             = "/*ase_globals*/\n"
	TagFunctions           = "/*ase_functions*/\n"
	TagInterpolatorBegin   = "/*ase_interp("
	TagVertexDataBegin     = "/*ase_vdata:"
	TagHidePass            = "/*ase_hide_pass*/"
	TagMainPass            = "/*ase_main_pass*/"
	TagVertexOutBegin      = "/*ase_vert_out:"
	TagFragmentOutBegin    = "/*ase_frag_out:"
	TagVertexInputParams   = "/*ase_vert_input*/"
	TagFragmentInputParams = "/*ase_frag_input*/"
	TagVertexCodeBegin     = "/*ase_vert_code:"
	TagFragmentCodeBegin   = "/*ase_frag_code:"
	TagEndOfLine           = "*/\n"
	TagEndSection          = "*/"
	TagFullEnd             = "/*end*/"
)

// NameFormat quotes a shader or pass name.
const NameFormat = "\"%s\""

var (
	subShaderPattern = regexp.MustCompile(`\bSubShader\b\s*{`)
	passPattern      = regexp.MustCompile(`\bPass\b\s*{`)
)

// TagSpec describes a marker to look up when an index is built.
type TagSpec struct {
	ID                string
	SearchIndentation bool
	CustomIndentation string
}

// CommonTags are the markers every template may declare at most once per
// scope. Properties is shader-wide; the rest are looked up inside each pass.
var CommonTags = []TagSpec{
	{ID: TagProperties, SearchIndentation: true},
	{ID: TagGlobals, SearchIndentation: true},
	{ID: TagFunctions, SearchIndentation: true},
	{ID: TagPragma, SearchIndentation: true},
	{ID: TagPass, SearchIndentation: true},
	{ID: TagVertexInputParams},
	{ID: TagFragmentInputParams},
}

// PassTagID qualifies a per-pass marker so the same marker text can appear
// once in every pass.
func PassTagID(sub, pass int, tag string) string {
	return fmt.Sprintf("s%d.p%d:%s", sub, pass, tag)
}

// SubShaderTagID qualifies a per-subshader marker.
func SubShaderTagID(sub int, tag string) string {
	return fmt.Sprintf("s%d:%s", sub, tag)
}

// Identifiers of the render-state spans a module renders into.
const (
	SpanBlendMode   = "blend_mode"
	SpanBlendOp     = "blend_op"
	SpanCull        = "cull"
	SpanColorMask   = "color_mask"
	SpanZWrite      = "zwrite"
	SpanZTest       = "ztest"
	SpanOffset      = "offset"
	SpanStencil     = "stencil"
	SpanTags        = "tags"
	SpanShaderModel = "shader_model"
	SpanLOD         = "lod"
	SpanName        = "name"
)
