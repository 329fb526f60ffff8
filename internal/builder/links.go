package builder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/suggest"
)

// ParseRef splits a "node" or "node.output" reference.
func ParseRef(ref string) (node, output string) {
	node, output, _ = strings.Cut(strings.TrimSpace(ref), ".")
	return node, output
}

// Resolve finds the node and output a reference points at.
func Resolve(g *codegen.Graph, ref string) (*codegen.Node, int, error) {
	name, output := ParseRef(ref)
	n, ok := g.Node(name)
	if !ok {
		return nil, 0, fmt.Errorf("unknown node '%s'%s", name, suggest.Hint(name, nodeNames(g)))
	}
	out, ok := n.OutputIndex(output)
	if !ok {
		return nil, 0, fmt.Errorf("node '%s' has no output '%s'", name, output)
	}
	return n, out, nil
}

// linkNodes performs the second pass of graph construction.
func linkNodes(ctx context.Context, model *config.Model, g *codegen.Graph) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting input linking pass.")

	for _, cn := range model.Nodes {
		dst, _ := g.Node(cn.Name)
		inputs := make([]string, 0, len(cn.Inputs))
		for in := range cn.Inputs {
			inputs = append(inputs, in)
		}
		sort.Strings(inputs)

		for _, in := range inputs {
			src, out, err := Resolve(g, cn.Inputs[in])
			if err != nil {
				return fmt.Errorf("node '%s', input '%s': %w", cn.Name, in, err)
			}
			if err := g.Connect(src, src.Outputs()[out].Name, dst, in); err != nil {
				return fmt.Errorf("node '%s': %w", cn.Name, err)
			}
			logger.Debug("Linked input.", "node", cn.Name, "input", in, "from", src.Name)
		}
	}
	return nil
}

func nodeNames(g *codegen.Graph) []string {
	names := make([]string, 0, len(g.Nodes()))
	for _, n := range g.Nodes() {
		names = append(names, n.Name)
	}
	return names
}
