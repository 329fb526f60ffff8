package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific project loader.
type Loader interface {
	// Load reads every project file under paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds raw node arguments to the Go config structs of units.
type Converter interface {
	// DecodeBody decodes args into target, a pointer to a struct whose
	// fields carry `sgen:"name[,optional]"` tags.
	DecodeBody(ctx context.Context, target any, args map[string]hcl.Expression) error

	// ToCtyValue converts a native Go value into its cty.Value.
	ToCtyValue(v any) (cty.Value, error)
}
