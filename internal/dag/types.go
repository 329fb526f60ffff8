package dag

import "sync"

// Graph holds codegen node ids and the links between them. It is safe for
// concurrent use.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

type node struct {
	id string
	// deps are the nodes whose outputs feed this one.
	deps map[string]*node
	// dependents are the nodes reading this node's outputs.
	dependents map[string]*node
}
