package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/suggest"
	"github.com/zclconf/go-cty/cty/gocty"
)

// configTag is the struct tag unit configs name their arguments with.
const configTag = "sgen"

// ValidateRegistry checks that every registered unit can be constructed and
// that every tagged config field maps onto a cty type.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, kind := range r.Kinds() {
		u := r.units[kind]
		if u.New == nil {
			errs = append(errs, fmt.Sprintf("unit '%s': no constructor", kind))
			continue
		}
		if u.NewConfig == nil {
			continue
		}

		cfg := u.NewConfig()
		cfgType := reflect.TypeOf(cfg)
		if cfgType == nil || cfgType.Kind() != reflect.Ptr || cfgType.Elem().Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("unit '%s': config must be a pointer to a struct, got %v", kind, cfgType))
			continue
		}

		structType := cfgType.Elem()
		for i := 0; i < structType.NumField(); i++ {
			field := structType.Field(i)
			if !field.IsExported() {
				continue
			}
			name := strings.Split(field.Tag.Get(configTag), ",")[0]
			if name == "" || name == "-" {
				continue
			}
			if _, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface()); err != nil {
				errs = append(errs, fmt.Sprintf("unit '%s', argument '%s': could not imply cty type from Go field type %s: %v", kind, name, field.Type, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validated.", "units", len(r.units))
	return nil
}

// ValidateModel checks that every node of m names a registered kind.
func (r *Registry) ValidateModel(ctx context.Context, m *config.Model) error {
	var errs []string
	kinds := r.Kinds()
	for _, n := range m.Nodes {
		if _, ok := r.units[n.Kind]; !ok {
			errs = append(errs, fmt.Sprintf("node '%s': unknown kind '%s'%s", n.Name, n.Kind, suggest.Hint(n.Kind, kinds)))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("project validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	ctxlog.FromContext(ctx).Debug("Project validated against registry.", "nodes", len(m.Nodes))
	return nil
}
