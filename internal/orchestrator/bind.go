package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/shadergen/internal/builder"
	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/record"
	"github.com/specialistvlad/shadergen/internal/renderstate"
	"github.com/specialistvlad/shadergen/internal/suggest"
)

// Bind applies a shader block of the project to sh: the LOD override, the
// port connections and the module overrides of every pass. Subshader
// overrides land on the first unit of the pass's subshader, which is the
// one that renders them.
func Bind(ctx context.Context, sh *Shader, cfg *config.Shader) error {
	logger := ctxlog.FromContext(ctx).With("shader", sh.Name)
	logger.Debug("Binding shader configuration.", "passes", len(cfg.Passes))

	if !sh.valid {
		return fmt.Errorf("shader '%s': %w: %s", sh.Name, ErrInvalidTemplate, sh.reason)
	}
	if cfg.HasLOD {
		for _, u := range sh.units {
			u.SetLOD(cfg.LOD)
		}
	}

	for _, p := range cfg.Passes {
		u, err := sh.Unit(p.Name)
		if err != nil {
			return err
		}
		if err := connectPorts(ctx, sh.session.Graph, u, p.Ports); err != nil {
			return fmt.Errorf("shader '%s', pass '%s': %w", sh.Name, p.Name, err)
		}
		if err := applyOverrides(sh, u, p.Modules); err != nil {
			return fmt.Errorf("shader '%s', pass '%s': %w", sh.Name, p.Name, err)
		}
	}
	return nil
}

func connectPorts(ctx context.Context, g *codegen.Graph, u *PassUnit, ports map[string]string) error {
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		port, ok := u.Port(name)
		if !ok {
			return fmt.Errorf("unknown port '%s'%s", name, suggest.Hint(name, u.portNames()))
		}
		node, out, err := builder.Resolve(g, ports[name])
		if err != nil {
			return fmt.Errorf("port '%s': %w", name, err)
		}
		port.Link = &codegen.Link{Node: node, Output: out}
		ctxlog.FromContext(ctx).Debug("Connected pass port.", "pass", u.OriginalPassName, "port", name, "from", node.Name)
	}
	return nil
}

func applyOverrides(sh *Shader, u *PassUnit, modules []*config.ModuleOverride) error {
	byLevel := map[string]map[string]record.Fields{}
	for _, m := range modules {
		if byLevel[m.Level] == nil {
			byLevel[m.Level] = map[string]record.Fields{}
		}
		if _, dup := byLevel[m.Level][m.Name]; dup {
			return fmt.Errorf("%s module '%s' is overridden twice", m.Level, m.Name)
		}
		byLevel[m.Level][m.Name] = m.Fields
	}

	if records := byLevel[renderstate.LevelPass]; len(records) > 0 {
		if err := u.PassModules.ApplyOverrides(records); err != nil {
			return err
		}
	}
	if records := byLevel[renderstate.LevelSubShader]; len(records) > 0 {
		first, ok := sh.SubShaderUnit(u.subIdx)
		if !ok {
			first = u
		}
		if err := first.SubShaderModules.ApplyOverrides(records); err != nil {
			return err
		}
	}
	return nil
}
