package codegen

import "github.com/specialistvlad/shadergen/internal/wire"

type cacheKey struct {
	node     int
	output   int
	category wire.Category
}

// Cache remembers the expression generated for each node output per stage.
// A fresh Cache is created for every build.
type Cache struct {
	entries map[cacheKey]string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]string)}
}

func (c *Cache) Get(node, output int, cat wire.Category) (string, bool) {
	v, ok := c.entries[cacheKey{node, output, cat}]
	return v, ok
}

func (c *Cache) Set(node, output int, cat wire.Category, expr string) {
	c.entries[cacheKey{node, output, cat}] = expr
}

func (c *Cache) Len() int { return len(c.entries) }
