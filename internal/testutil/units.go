package testutil

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/shadergen/internal/builder"
	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/hcladapter"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/wire"
	"github.com/stretchr/testify/require"
)

// UnitHarness creates nodes from the kinds a set of modules registers and
// generates them through a single collector, the way a pass unit would.
type UnitHarness struct {
	t         *testing.T
	Ctx       context.Context
	Logs      *SafeBuffer
	Session   *codegen.Session
	Registry  *registry.Registry
	Collector *codegen.Collector
}

// NewUnitHarness registers modules into a fresh registry and prepares a
// collector for a pass described by pass.
func NewUnitHarness(t *testing.T, pass codegen.PassInfo, modules ...registry.Module) *UnitHarness {
	t.Helper()
	ctx, logs := CaptureLogs(t)
	r := registry.New()
	for _, m := range modules {
		m.Register(r)
	}
	require.NoError(t, r.ValidateRegistry(ctx))
	s := codegen.NewSession()
	return &UnitHarness{
		t:         t,
		Ctx:       ctx,
		Logs:      logs,
		Session:   s,
		Registry:  r,
		Collector: codegen.NewCollector(s, pass),
	}
}

// NewNode creates a node of kind. args holds the node's arguments as HCL
// attribute source, e.g. `value = 0.5`.
func (h *UnitHarness) NewNode(name, kind, args string) (*codegen.Node, error) {
	h.t.Helper()
	n := &config.Node{Kind: kind, Name: name, Arguments: h.arguments(args)}
	if err := builder.BuildStatic(h.Ctx, &config.Model{Nodes: []*config.Node{n}}, h.Registry, hcladapter.NewConverter(), h.Session); err != nil {
		return nil, err
	}
	node, _ := h.Session.Graph.Node(name)
	return node, nil
}

// Node is NewNode for nodes that must be created.
func (h *UnitHarness) Node(name, kind, args string) *codegen.Node {
	h.t.Helper()
	n, err := h.NewNode(name, kind, args)
	require.NoError(h.t, err)
	return n
}

func (h *UnitHarness) arguments(src string) map[string]hcl.Expression {
	h.t.Helper()
	if src == "" {
		return nil
	}
	f, diags := hclsyntax.ParseConfig([]byte(src), "args.hcl", hcl.InitialPos)
	require.False(h.t, diags.HasErrors(), diags.Error())
	args := make(map[string]hcl.Expression)
	for name, attr := range f.Body.(*hclsyntax.Body).Attributes {
		args[name] = attr.Expr
	}
	return args
}

// Connect links ref, a "node[.output]" reference, to input of node dst.
func (h *UnitHarness) Connect(ref, dst, input string) {
	h.t.Helper()
	src, output := builder.ParseRef(ref)
	from, ok := h.Session.Graph.Node(src)
	require.True(h.t, ok, "unknown node %s", src)
	to, ok := h.Session.Graph.Node(dst)
	require.True(h.t, ok, "unknown node %s", dst)
	require.NoError(h.t, h.Session.Graph.Connect(from, output, to, input))
}

// Generate reads ref through a port of type dt in stage cat.
func (h *UnitHarness) Generate(cat wire.Category, ref string, dt wire.DataType) (string, error) {
	h.t.Helper()
	n, out, err := builder.Resolve(h.Session.Graph, ref)
	require.NoError(h.t, err)
	h.Collector.SetCategory(cat)
	defer h.Collector.SetCategory(wire.Fragment)
	port := &codegen.InputPort{Name: "Out", DataType: dt, Link: &codegen.Link{Node: n, Output: out}}
	return h.Collector.GeneratePortInstructions(port)
}

// Fragment generates ref in the fragment stage and requires it to succeed.
func (h *UnitHarness) Fragment(ref string, dt wire.DataType) string {
	h.t.Helper()
	expr, err := h.Generate(wire.Fragment, ref, dt)
	require.NoError(h.t, err)
	return expr
}
