package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/template"
)

// loadProject reads the project files into the format-agnostic model and
// checks every node against the registry.
func (a *App) loadProject(ctx context.Context) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading project...", "project_path", a.config.ProjectPath)

	model, conv, err := a.loader.Load(ctx, a.config.ProjectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load project: %w", err)
	}
	if err := a.registry.ValidateModel(ctx, model); err != nil {
		return nil, nil, err
	}
	logger.Info("Project loaded.", "shaders", len(model.Shaders), "nodes", len(model.Nodes))
	return model, conv, nil
}

// loadLibrary loads the template directory and the templates the project
// declares. A missing template directory is not an error when the project
// declares its own templates.
func (a *App) loadLibrary(ctx context.Context, model *config.Model) (*template.Library, error) {
	logger := ctxlog.FromContext(ctx)
	lib := template.NewLibrary()

	if dir := a.config.TemplatesPath; dir != "" {
		err := lib.LoadDir(ctx, dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("Template directory not found, skipping.", "path", dir)
		case err != nil:
			return nil, err
		}
	}

	if model != nil {
		for _, t := range model.Templates {
			path := t.Path
			if !filepath.IsAbs(path) && t.File != "" {
				path = filepath.Join(filepath.Dir(t.File), path)
			}
			tmpl, err := template.LoadFile(template.Source{Name: t.Name, GUID: t.GUID, Path: path, SRP: t.SRP})
			if err != nil {
				return nil, fmt.Errorf("template '%s': %w", t.Name, err)
			}
			if err := lib.Add(tmpl); err != nil {
				return nil, fmt.Errorf("template '%s': %w", t.Name, err)
			}
			logger.Debug("Loaded project template.", "name", tmpl.Name, "guid", tmpl.GUID)
		}
	}

	if lib.Len() == 0 {
		return nil, fmt.Errorf("no templates found in '%s' or in the project", a.config.TemplatesPath)
	}
	return lib, nil
}

// readFile is os.ReadFile with a message naming what was read.
func readFile(what, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", what, path, err)
	}
	return data, nil
}
