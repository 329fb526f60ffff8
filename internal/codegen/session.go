package codegen

// NoOwner is returned by CheckOwner for a free name.
const NoOwner = -1

// UniformRegistry records which owner claimed each uniform name. It is not
// safe for concurrent use.
type UniformRegistry struct {
	owners map[string]int
}

func NewUniformRegistry() *UniformRegistry {
	return &UniformRegistry{owners: make(map[string]int)}
}

// Register claims name for owner. It returns false when another owner holds
// the name already. Registering a name twice for the same owner succeeds.
func (r *UniformRegistry) Register(owner int, name string) bool {
	if current, ok := r.owners[name]; ok {
		return current == owner
	}
	r.owners[name] = owner
	return true
}

// Release frees name if owner holds it.
func (r *UniformRegistry) Release(owner int, name string) {
	if current, ok := r.owners[name]; ok && current == owner {
		delete(r.owners, name)
	}
}

// CheckOwner returns the owner of name, or NoOwner.
func (r *UniformRegistry) CheckOwner(name string) int {
	if owner, ok := r.owners[name]; ok {
		return owner
	}
	return NoOwner
}

// Session is the state shared by everything generated for one project.
type Session struct {
	Uniforms  *UniformRegistry
	Graph     *Graph
	nextOwner int
}

func NewSession() *Session {
	return &Session{
		Uniforms: NewUniformRegistry(),
		Graph:    NewGraph(),
	}
}

// NewOwner returns an owner id no other caller of this session has seen.
func (s *Session) NewOwner() int {
	id := s.nextOwner
	s.nextOwner++
	return id
}
