package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/shadergen/internal/builder"
	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/document"
	"github.com/specialistvlad/shadergen/internal/orchestrator"
	"github.com/specialistvlad/shadergen/internal/publish"
	"github.com/specialistvlad/shadergen/internal/template"
)

// builtShader is the result of generating one shader.
type builtShader struct {
	name     string
	template string
	text     string
	doc      *document.Document
}

// build loads everything from disk and generates every shader of the
// project. Outputs are only written once all shaders succeeded.
func (a *App) build(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build started.")

	model, conv, err := a.loadProject(ctx)
	if err != nil {
		return err
	}
	if len(model.Shaders) == 0 {
		logger.Warn("Project declares no shaders, nothing to build.")
		return nil
	}
	lib, err := a.loadLibrary(ctx, model)
	if err != nil {
		return err
	}

	var results []*builtShader
	for _, cfg := range model.Shaders {
		res, err := a.buildShader(ctx, model, conv, lib, cfg)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if err := a.writeShaders(ctx, results); err != nil {
		return err
	}
	if a.config.SavePath != "" {
		if err := a.saveDocuments(ctx, results); err != nil {
			return err
		}
	}
	if a.publisher != nil {
		for _, res := range results {
			err := a.publisher.Publish(ctx, publish.Payload{Name: res.name, Template: res.template, Text: res.text})
			if err != nil {
				logger.Warn("Failed to publish shader.", "shader", res.name, "error", err)
			}
		}
	}
	logger.Info("Build finished.", "shaders", len(results))
	return nil
}

// buildShader generates one shader in its own session, so the uniform names
// claimed by one shader's nodes never collide with another's.
func (a *App) buildShader(ctx context.Context, model *config.Model, conv config.Converter, lib *template.Library, cfg *config.Shader) (*builtShader, error) {
	logger := ctxlog.FromContext(ctx).With("shader", cfg.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	s := codegen.NewSession()
	defer s.Graph.Close(s)
	if err := builder.BuildStatic(ctx, model, a.registry, conv, s); err != nil {
		return nil, fmt.Errorf("shader '%s': %w", cfg.Name, err)
	}

	sh := orchestrator.NewShader(cfg.Name, s)
	defer sh.Close()
	if err := sh.AssignTemplate(ctx, lib, cfg.Template); err != nil {
		return nil, err
	}
	if err := a.applySavedDocument(ctx, sh); err != nil {
		return nil, err
	}
	if err := orchestrator.Bind(ctx, sh, cfg); err != nil {
		return nil, err
	}
	text, err := sh.BuildShader(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := document.Capture(sh)
	if err != nil {
		return nil, err
	}
	return &builtShader{name: cfg.Name, template: sh.Template().Name, text: text, doc: doc}, nil
}

// applySavedDocument restores the document saved for sh by an earlier
// build, if there is one. Project overrides are bound afterwards and win.
func (a *App) applySavedDocument(ctx context.Context, sh *orchestrator.Shader) error {
	if a.config.SavePath == "" {
		return nil
	}
	path := filepath.Join(a.config.SavePath, fileName(sh.Name, documentExt))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", path, err)
	}
	doc, err := document.Decode(data, path)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Applying saved document.", "path", path)
	return doc.Apply(ctx, sh)
}

const (
	shaderExt   = ".shader"
	documentExt = ".shaderdoc.hcl"
)

// fileName turns a shader name such as "Custom/Water" into a file name.
func fileName(shader, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, shader)
	return name + ext
}

// writeShaders writes the generated text to the output writer, to OutPath
// when it names a .shader file, or into the OutPath directory.
func (a *App) writeShaders(ctx context.Context, results []*builtShader) error {
	logger := ctxlog.FromContext(ctx)
	out := a.config.OutPath
	switch {
	case out == "":
		for _, res := range results {
			if _, err := fmt.Fprintln(a.outW, res.text); err != nil {
				return fmt.Errorf("failed to write shader '%s': %w", res.name, err)
			}
		}
		return nil
	case strings.HasSuffix(out, shaderExt):
		if len(results) != 1 {
			return fmt.Errorf("output %s is a single file but the project has %d shaders", out, len(results))
		}
		return writeFile(ctx, out, results[0].text)
	}
	for _, res := range results {
		if err := writeFile(ctx, filepath.Join(out, fileName(res.name, shaderExt)), res.text); err != nil {
			return err
		}
	}
	logger.Debug("Shaders written.", "dir", out, "count", len(results))
	return nil
}

func (a *App) saveDocuments(ctx context.Context, results []*builtShader) error {
	for _, res := range results {
		path := filepath.Join(a.config.SavePath, fileName(res.name, documentExt))
		if err := writeFile(ctx, path, string(res.doc.Encode())); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(ctx context.Context, path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Info("File written.", "path", path, "bytes", len(text))
	return nil
}
