package dag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode("a") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Len(t, g.nodes, 2)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")

		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("b", "c"))

		assert.Equal(t, []string{"a", "b"}, sortedKeys(g.nodes["c"].deps))
		assert.Equal(t, []string{"c"}, sortedKeys(g.nodes["a"].dependents))
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")
		assert.True(t, errors.Is(err, ErrCycle))
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddNode("d")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c")) // Transitive edge
		require.NoError(t, g.AddEdge("c", "d"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("longer cycle is reported with its path", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("c", "a"))
		err := g.DetectCycles()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCycle))
		assert.ErrorContains(t, err, "a -> b -> c -> a")
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))

		g.AddNode("x")
		g.AddNode("y")
		g.AddNode("z")
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y"))

		err := g.DetectCycles()
		assert.ErrorContains(t, err, "y -> z -> y")
	})
}

func TestTopologicalSort(t *testing.T) {
	g := New()
	for _, id := range []string{"tint", "half", "tinted", "out"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("tint", "tinted"))
	require.NoError(t, g.AddEdge("half", "tinted"))
	require.NoError(t, g.AddEdge("tinted", "out"))
	require.NoError(t, g.AddEdge("half", "out"))

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"half", "tint", "tinted", "out"}, order)

	require.NoError(t, g.AddEdge("out", "half"))
	_, err = g.TopologicalSort()
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ids     []string
		edges   [][2]string
		wantErr string
	}{
		{name: "acyclic", ids: []string{"a", "b"}, edges: [][2]string{{"a", "b"}}},
		{name: "cycle", ids: []string{"a", "b"}, edges: [][2]string{{"a", "b"}, {"b", "a"}}, wantErr: "cycle detected"},
		{name: "self link", ids: []string{"a"}, edges: [][2]string{{"a", "a"}}, wantErr: "self-referential"},
		{name: "unknown node", ids: []string{"a"}, edges: [][2]string{{"a", "b"}}, wantErr: "destination node not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, err := Build(context.Background(), tt.ids, tt.edges)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, g.nodes, len(tt.ids))
		})
	}
}
