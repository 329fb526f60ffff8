package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/shadergen/internal/hcladapter"
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/internal/testutil"
)

// setupAppTest creates a new app instance for system testing. Shaders go
// to out and debug logs to logs.
func setupAppTest(t *testing.T, cfg *Config, modules ...registry.Module) (a *App, out, logs *testutil.SafeBuffer) {
	t.Helper()

	out, logs = &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	a = NewApp(out, logs, cfg, hcladapter.NewLoader(), modules...)

	t.Cleanup(func() {
		if os.Getenv(testutil.LogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

const tintedProject = `
shader "Custom/Tinted" {
  template = "Hidden/Templates/Unlit"

  pass "Unlit" {
    ports = { "Frag Color" = "tint" }
  }
}

node "color_property" "tint" {
  name    = "_Tint"
  default = [1, 0.5, 0.5, 1]
}
`

// newProject writes a template directory and a project holding project.hcl
// and returns their paths.
func newProject(t *testing.T, project string) (templates, projectDir string) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"templates/unlit.shader": testutil.UnlitTemplate,
		"templates/plain.shader": "Shader \"NotATemplate\" { SubShader { Pass { } } }\n",
		"project/project.hcl":    project,
	})
	return filepath.Join(root, "templates"), filepath.Join(root, "project")
}
