// Package version holds the document-format version number written into
// every persisted shader document, and the versions at which optional
// serialized fields were introduced. Versions only ever gate reads of older
// documents; nothing is written in an older shape.
package version

const (
	Major    = 1
	Minor    = 5
	Release  = 3
	Revision = 1
)

// Current is the format version written by this build.
const Current = Major*10000 + Minor*1000 + Release*100 + Revision

// Feature-introduction versions. A field introduced at version N is present
// in a document only if the document's version is greater than N.
const (
	// TemplateNameField adds the template shader name after the GUID in
	// single-pass master records.
	TemplateNameField = 13601
	// SinglePassRenderState adds blend, cull, color mask and stencil to
	// single-pass master records.
	SinglePassRenderState = 13902
	// SinglePassDepth adds zwrite, ztest and offset.
	SinglePassDepth = 14202
	// SinglePassTags adds the tags module.
	SinglePassTags = 14301
	// ModuleValidityFlag prefixes every module with its validity flag.
	ModuleValidityFlag = 14503
)

// Has reports whether a document written at docVersion carries a field
// introduced at feature.
func Has(docVersion, feature int) bool {
	return docVersion > feature
}
