package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	write := func(rel string) string {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
		return p
	}
	b := write("b.shader")
	a := write("nested/a.shader")
	h := write("project.hcl")
	write("readme.md")

	t.Run("walks directories and sorts", func(t *testing.T) {
		t.Parallel()
		files, err := FindFilesByExtension(root, ".shader")
		require.NoError(t, err)
		assert.Equal(t, []string{b, a}, files)
	})

	t.Run("multiple extensions", func(t *testing.T) {
		t.Parallel()
		files, err := FindFilesByExtension(root, ".shader", ".hcl")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a, b, h}, files)
	})

	t.Run("single file root", func(t *testing.T) {
		t.Parallel()
		files, err := FindFilesByExtension(h, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{h}, files)
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		_, err := FindFilesByExtension(filepath.Join(root, "nope"), ".hcl")
		assert.Error(t, err)
	})

	t.Run("no extension panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { _, _ = FindFilesByExtension(root) })
	})
}
