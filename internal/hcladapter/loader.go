package hcladapter

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL project loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges their blocks into one
// model. Shader and node names must be unique across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	shaders := make(map[string]string)
	nodes := make(map[string]string)
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, t := range root.Templates {
			model.Templates = append(model.Templates, translateTemplate(t, file))
		}
		for _, s := range root.Shaders {
			if prev, ok := shaders[s.Name]; ok {
				return nil, nil, fmt.Errorf("shader '%s' in %s is already declared in %s", s.Name, file, prev)
			}
			shaders[s.Name] = file
			shader, err := l.translateShader(ctx, s, file)
			if err != nil {
				return nil, nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Shaders = append(model.Shaders, shader)
		}
		for _, n := range root.Nodes {
			if prev, ok := nodes[n.Name]; ok {
				return nil, nil, fmt.Errorf("node '%s' in %s is already declared in %s", n.Name, file, prev)
			}
			nodes[n.Name] = file
			node, err := l.translateNode(ctx, n)
			if err != nil {
				return nil, nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Nodes = append(model.Nodes, node)
		}
	}

	logger.Debug("HCL loading complete.", "templates", len(model.Templates), "shaders", len(model.Shaders), "nodes", len(model.Nodes))
	return model, NewConverter(), nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		for _, f := range found {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
