package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/shadergen/internal/ctxlog"
)

// Build constructs a validated graph from node IDs and (from, to) edges.
// Edges may only reference listed IDs.
func Build(ctx context.Context, ids []string, edges [][2]string) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "node_count", len(ids), "edge_count", len(edges))

	g := New()
	for _, id := range ids {
		g.AddNode(id)
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("error linking %s to %s: %w", e[0], e[1], err)
		}
	}

	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")
	return g, nil
}
