package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/dag"
	"github.com/specialistvlad/shadergen/internal/registry"
)

// BuildStatic fills the graph of s with the nodes of model and links them.
func BuildStatic(ctx context.Context, model *config.Model, r *registry.Registry, conv config.Converter, s *codegen.Session) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	if err := createNodes(ctx, model, r, conv, s); err != nil {
		return err
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(s.Graph.Nodes()))

	if err := linkNodes(ctx, model, s.Graph); err != nil {
		return err
	}
	logger.Debug("Build: Node linking complete.")

	if err := CheckCycles(ctx, s.Graph); err != nil {
		return err
	}

	logger.Info("Build: Graph construction successful.", "nodes", len(s.Graph.Nodes()))
	return nil
}

// CheckCycles fails when the links of g form a cycle.
func CheckCycles(ctx context.Context, g *codegen.Graph) error {
	ids := make([]string, 0, len(g.Nodes()))
	for _, n := range g.Nodes() {
		ids = append(ids, n.Name)
	}
	if _, err := dag.Build(ctx, ids, g.Edges()); err != nil {
		return fmt.Errorf("%w: %w", codegen.ErrCycle, err)
	}
	return nil
}
