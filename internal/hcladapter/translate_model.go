// This file contains the logic for translating the HCL schema structs into
// the format-agnostic project model defined in the config package.

package hcladapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// inputsAttr is the node attribute that wires unit inputs.
const inputsAttr = "inputs"

var moduleLevels = []string{"subshader", "pass"}

func translateTemplate(t *templateBlock, file string) *config.Template {
	return &config.Template{Name: t.Name, GUID: t.GUID, Path: t.Path, SRP: t.SRP, File: file}
}

func (l *Loader) translateShader(ctx context.Context, s *shaderBlock, file string) (*config.Shader, error) {
	logger := ctxlog.FromContext(ctx).With("shader", s.Name)
	logger.Debug("Translating HCL shader to internal config model.")

	shader := &config.Shader{Name: s.Name, Template: s.Template, File: file}
	if isExprDefined(ctx, s.LOD, "lod") {
		diags := gohcl.DecodeExpression(s.LOD, nil, &shader.LOD)
		if diags.HasErrors() {
			return nil, fmt.Errorf("shader '%s': invalid lod: %w", s.Name, diags)
		}
		shader.HasLOD = true
	}

	seen := make(map[string]bool)
	for _, p := range s.Passes {
		if seen[p.Name] {
			return nil, fmt.Errorf("shader '%s': pass '%s' is declared twice", s.Name, p.Name)
		}
		seen[p.Name] = true

		pass := &config.Pass{Name: p.Name, Ports: p.Ports}
		for _, m := range p.Modules {
			if !isModuleLevel(m.Level) {
				return nil, fmt.Errorf("shader '%s', pass '%s': unknown module level '%s', expected one of %s", s.Name, p.Name, m.Level, strings.Join(moduleLevels, ", "))
			}
			fields, diags := record.FromBody(m.Body)
			if diags.HasErrors() {
				return nil, fmt.Errorf("shader '%s', pass '%s', module '%s': %w", s.Name, p.Name, m.Name, diags)
			}
			pass.Modules = append(pass.Modules, &config.ModuleOverride{Level: m.Level, Name: m.Name, Fields: fields})
		}
		shader.Passes = append(shader.Passes, pass)
	}
	return shader, nil
}

func isModuleLevel(level string) bool {
	for _, l := range moduleLevels {
		if l == level {
			return true
		}
	}
	return false
}

// translateNode splits the inputs attribute off the node body. Everything
// else stays a raw expression for the unit's config.
func (l *Loader) translateNode(ctx context.Context, n *nodeBlock) (*config.Node, error) {
	logger := ctxlog.FromContext(ctx).With("node_kind", n.Kind, "node_name", n.Name)
	logger.Debug("Translating HCL node to internal config model.")

	attrs, diags := n.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("node '%s': %w", n.Name, diags)
	}

	node := &config.Node{Kind: n.Kind, Name: n.Name, Arguments: make(map[string]hcl.Expression)}
	for name, attr := range attrs {
		if name != inputsAttr {
			node.Arguments[name] = attr.Expr
			continue
		}
		inputs, err := decodeStringMap(attr.Expr)
		if err != nil {
			return nil, fmt.Errorf("node '%s': invalid inputs: %w", n.Name, err)
		}
		node.Inputs = inputs
	}
	return node, nil
}

func decodeStringMap(expr hcl.Expression) (map[string]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	converted, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, err
	}
	var out map[string]string
	if err := gocty.FromCtyValue(converted, &out); err != nil {
		return nil, err
	}
	return out, nil
}
