package codegen

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/shadergen/internal/dag"
	"github.com/specialistvlad/shadergen/internal/wire"
)

// PortDef declares one port of a unit.
type PortDef struct {
	Name     string
	DataType wire.DataType
	// Default is the expression an unconnected input reads.
	Default string
}

// Unit is one codegen node implementation.
type Unit interface {
	Inputs() []PortDef
	Outputs() []PortDef
	// GenerateShaderForOutput returns the expression for output outputID.
	// Units resolve their own inputs through c. When ignoreLocalVar is set
	// the unit returns its expression inline instead of registering a local
	// variable.
	GenerateShaderForOutput(n *Node, outputID int, c *Collector, ignoreLocalVar bool) (string, error)
}

// Closer is implemented by units that hold session resources.
type Closer interface {
	Close(s *Session)
}

// Link points at an output port of another node.
type Link struct {
	Node   *Node
	Output int
}

// InputPort is an input of a node or of a pass unit.
type InputPort struct {
	Name     string
	DataType wire.DataType
	Default  string
	Link     *Link
}

// IsConnected reports whether the port reads from an upstream node.
func (p *InputPort) IsConnected() bool { return p.Link != nil && p.Link.Node != nil }

// Node is a unit placed in a graph.
type Node struct {
	ID      int
	Name    string
	Kind    string
	Unit    Unit
	inputs  []*InputPort
	outputs []PortDef
}

// Input returns the input port called name.
func (n *Node) Input(name string) (*InputPort, bool) {
	for _, p := range n.inputs {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// InputAt returns the i-th input port.
func (n *Node) InputAt(i int) *InputPort { return n.inputs[i] }

func (n *Node) Inputs() []*InputPort { return n.inputs }

func (n *Node) Outputs() []PortDef { return n.outputs }

// OutputIndex returns the position of the output called name. An empty name
// selects the first output.
func (n *Node) OutputIndex(name string) (int, bool) {
	if name == "" && len(n.outputs) > 0 {
		return 0, true
	}
	for i, o := range n.outputs {
		if o.Name == name {
			return i, true
		}
	}
	return -1, false
}

// LocalVariableName is the name of the local variable holding output out.
func (n *Node) LocalVariableName(out int) string {
	return fmt.Sprintf("temp_output_%d_%d", n.ID, out)
}

// Graph owns every node of one project.
type Graph struct {
	nodes  []*Node
	byName map[string]*Node
	nextID int
}

func NewGraph() *Graph {
	return &Graph{byName: make(map[string]*Node)}
}

// AddNode places u in the graph under name. Node ids are assigned in
// insertion order.
func (g *Graph) AddNode(name, kind string, u Unit) (*Node, error) {
	if _, ok := g.byName[name]; ok {
		return nil, fmt.Errorf("node '%s' already exists", name)
	}
	n := &Node{ID: g.nextID, Name: name, Kind: kind, Unit: u, outputs: u.Outputs()}
	for _, def := range u.Inputs() {
		n.inputs = append(n.inputs, &InputPort{Name: def.Name, DataType: def.DataType, Default: def.Default})
	}
	g.nextID++
	g.nodes = append(g.nodes, n)
	g.byName[name] = n
	return n, nil
}

func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Nodes returns every node in id order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Connect links input of dst to output of src.
func (g *Graph) Connect(src *Node, output string, dst *Node, input string) error {
	out, ok := src.OutputIndex(output)
	if !ok {
		return fmt.Errorf("node '%s' has no output '%s'", src.Name, output)
	}
	in, ok := dst.Input(input)
	if !ok {
		return fmt.Errorf("node '%s' has no input '%s'", dst.Name, input)
	}
	in.Link = &Link{Node: src, Output: out}
	return nil
}

// Edges returns every link as a (from, to) pair of node names, sorted.
func (g *Graph) Edges() [][2]string {
	var edges [][2]string
	for _, n := range g.nodes {
		for _, in := range n.inputs {
			if in.IsConnected() {
				edges = append(edges, [2]string{in.Link.Node.Name, n.Name})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// Close releases the session resources held by every unit. A node is
// released before the nodes it reads from.
func (g *Graph) Close(s *Session) {
	for _, n := range g.closeOrder() {
		if c, ok := n.Unit.(Closer); ok {
			c.Close(s)
		}
	}
}

// closeOrder is the reverse topological order of the nodes, or creation
// order when the links do not form a DAG.
func (g *Graph) closeOrder() []*Node {
	d := dag.New()
	for _, n := range g.nodes {
		d.AddNode(n.Name)
	}
	for _, e := range g.Edges() {
		if err := d.AddEdge(e[0], e[1]); err != nil {
			return g.nodes
		}
	}
	order, err := d.TopologicalSort()
	if err != nil {
		return g.nodes
	}
	out := make([]*Node, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		n, _ := g.Node(order[i])
		out = append(out, n)
	}
	return out
}
