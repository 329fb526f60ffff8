package template

import "github.com/specialistvlad/shadergen/internal/wire"

// DataCheck says whether a template declares a render state and whether the
// declaration could be read.
type DataCheck int

const (
	DataInvalid DataCheck = iota
	DataValid
	// DataUnreadable marks a declaration that uses material properties
	// ("[_Prop]") instead of literal values.
	DataUnreadable
)

func (d DataCheck) String() string {
	switch d {
	case DataValid:
		return "valid"
	case DataUnreadable:
		return "unreadable"
	}
	return "invalid"
}

// BlendData holds the Blend and BlendOp lines declared by a template.
type BlendData struct {
	DataCheck            DataCheck
	ValidBlendMode       bool
	ValidBlendOp         bool
	BlendModeOff         bool
	SeparateBlendFactors bool
	SourceFactorRGB      string
	DestFactorRGB        string
	SourceFactorAlpha    string
	DestFactorAlpha      string
	BlendOpRGB           string
	BlendOpAlpha         string
}

type CullData struct {
	DataCheck DataCheck
	Mode      string
}

type ColorMaskData struct {
	DataCheck DataCheck
	Mask      [4]bool
}

// DepthData holds the ZWrite, ZTest and Offset lines. Each part is declared
// independently.
type DepthData struct {
	DataCheck    DataCheck
	ValidZWrite  bool
	ZWriteMode   string
	ValidZTest   bool
	ZTestMode    string
	ValidOffset  bool
	OffsetFactor float64
	OffsetUnits  float64
}

type StencilData struct {
	DataCheck       DataCheck
	Reference       int
	ReadMask        int
	WriteMask       int
	ComparisonFront string
	PassFront       string
	FailFront       string
	ZFailFront      string
	ComparisonBack  string
	PassBack        string
	FailBack        string
	ZFailBack       string
}

// Tag is one "Name"="Value" pair of a Tags block.
type Tag struct {
	Name  string
	Value string
}

type TagsData struct {
	DataCheck DataCheck
	Tags      []Tag
}

type ShaderModelData struct {
	DataCheck DataCheck
	Value     string
}

// DirectivesData lists the directives already present in the template so
// they are never emitted a second time.
type DirectivesData struct {
	Pragmas  []string
	Includes []string
	Defines  []string
}

// ModulesData is everything a template declares at one level, either a
// subshader or a pass.
type ModulesData struct {
	Blend       BlendData
	Cull        CullData
	ColorMask   ColorMaskData
	Depth       DepthData
	Stencil     StencilData
	Tags        TagsData
	ShaderModel ShaderModelData
	Directives  DirectivesData
	// PragmaTag is the index id of the /*ase_pragma*/ marker, empty when the
	// level declares none.
	PragmaTag string
	SRP       bool
}

// HasPragmaTag reports whether additional directives can be emitted at this
// level.
func (m *ModulesData) HasPragmaTag() bool { return m.PragmaTag != "" }

// PortInfo describes one input port declared by a pass.
type PortInfo struct {
	Name     string
	DataType wire.DataType
	UniqueID int
	OrderID  int
	Category wire.Category
	// LinkID names a port of another pass as "<PassName>:<PortName>".
	LinkID  string
	Default string
	TagID   string
}

// HasLink reports whether the port borrows another pass's port.
func (p PortInfo) HasLink() bool { return p.LinkID != "" }

// CodeTag is a vertex or fragment function body marker with its declared
// input and output variables.
type CodeTag struct {
	TagID   string
	InVar   string
	InType  string
	OutVar  string
	OutType string
}

// InterpData is the interpolator struct marker of a pass.
type InterpData struct {
	TagID string
	// Start is the first free TEXCOORD slot.
	Start int
	// Max is the slot budget; DynamicMax leaves it to the shader model.
	Max        int
	DynamicMax bool
	// Used lists the interpolator fields the template already declares.
	Used []string
}

// VertexDataTag is the vertex input struct marker of a pass.
type VertexDataTag struct {
	TagID string
	// Available maps declared attribute names to their field names.
	Available map[string]string
}

// Pass is one Pass block of a template.
type Pass struct {
	Index          int
	SubShaderIndex int
	Name           string
	IsMainPass     bool
	IsInvisible    bool
	Ports          []PortInfo
	Modules        ModulesData
	Globals        []string
	VertexCode     *CodeTag
	FragmentCode   *CodeTag
	Interp         *InterpData
	VertexData     *VertexDataTag
	Start, End     int
}

// Port returns the port named name.
func (p *Pass) Port(name string) (PortInfo, bool) {
	for _, port := range p.Ports {
		if port.Name == name {
			return port, true
		}
	}
	return PortInfo{}, false
}

// SubShader is one SubShader block of a template.
type SubShader struct {
	Index   int
	LOD     int
	HasLOD  bool
	Modules ModulesData
	Globals []string
	Passes  []*Pass
	Start   int
	End     int
}
