package hcladapter

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// TagName is the struct tag unit configs use to name their arguments.
const TagName = "sgen"

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeBody iterates through the tagged fields of target, evaluates the
// matching argument and converts it to the field's type. Arguments that no
// field claims are an error.
func (c *Converter) DecodeBody(ctx context.Context, target any, args map[string]hcl.Expression) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting HCL body decoding.", "arg_count", len(args))

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	claimed := make(map[string]bool)
	for i := 0; i < structType.NumField(); i++ {
		fieldDef := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldDef.IsExported() || !fieldVal.CanSet() {
			continue
		}

		name, opts, _ := strings.Cut(fieldDef.Tag.Get(TagName), ",")
		if name == "" || name == "-" {
			continue
		}
		claimed[name] = true

		expr, provided := args[name]
		if !provided {
			if opts == "optional" {
				continue
			}
			return fmt.Errorf("missing required argument %q", name)
		}

		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("failed to evaluate argument '%s': %w", name, diags)
		}
		if err := c.decode(val, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", name, err)
		}
	}

	var unknown []string
	for name := range args {
		if !claimed[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unsupported argument(s): %s", strings.Join(unknown, ", "))
	}

	logger.Debug("Finished HCL body decoding successfully.")
	return nil
}

// decode converts val to the type implied by the Go value goVal points to.
func (c *Converter) decode(val cty.Value, goVal any) error {
	goPtr := reflect.ValueOf(goVal).Elem()

	if goPtr.Type() == reflect.TypeOf(cty.Value{}) {
		if val.IsKnown() {
			goPtr.Set(reflect.ValueOf(val))
		}
		return nil
	}
	if !val.IsKnown() || val.IsNull() {
		return nil
	}

	ty, err := gocty.ImpliedType(goPtr.Interface())
	if err != nil {
		return fmt.Errorf("cannot imply cty type for %s: %w", goPtr.Type().String(), err)
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return fmt.Errorf("cannot convert value of type %s to %s: %w", val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, goVal)
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
