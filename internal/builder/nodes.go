package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/registry"
)

// createNodes performs the first pass of graph construction, placing one
// unit per node block in the session graph.
func createNodes(ctx context.Context, model *config.Model, r *registry.Registry, conv config.Converter, s *codegen.Session) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting node creation pass.")

	for _, n := range model.Nodes {
		reg, ok := r.Unit(n.Kind)
		if !ok {
			return fmt.Errorf("node '%s': unknown kind '%s'", n.Name, n.Kind)
		}

		var cfg any
		if reg.NewConfig != nil {
			cfg = reg.NewConfig()
			if err := conv.DecodeBody(ctx, cfg, n.Arguments); err != nil {
				return fmt.Errorf("node '%s': %w", n.Name, err)
			}
		} else if len(n.Arguments) > 0 {
			return fmt.Errorf("node '%s': kind '%s' takes no arguments", n.Name, n.Kind)
		}

		unit, err := reg.New(ctx, s, cfg)
		if err != nil {
			return fmt.Errorf("node '%s': %w", n.Name, err)
		}
		if _, err := s.Graph.AddNode(n.Name, n.Kind, unit); err != nil {
			return err
		}
		logger.Debug("Created node.", "name", n.Name, "kind", n.Kind)
	}
	return nil
}
