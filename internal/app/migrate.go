package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/document"
	"github.com/specialistvlad/shadergen/internal/version"
)

// migrate converts the legacy document at MigratePath into the tagged
// format. The result goes to OutPath, or to the output writer.
func (a *App) migrate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("path", a.config.MigratePath)
	ctx = ctxlog.WithLogger(ctx, logger)

	data, err := readFile("legacy document", a.config.MigratePath)
	if err != nil {
		return err
	}

	// Project templates count too when a project is given.
	var model *config.Model
	if a.config.ProjectPath != "" {
		if model, _, err = a.loadProject(ctx); err != nil {
			return err
		}
	}
	lib, err := a.loadLibrary(ctx, model)
	if err != nil {
		return err
	}

	docVersion := a.config.LegacyVersion
	if docVersion == 0 {
		docVersion = version.Current
	}
	doc, err := document.ParseLegacy(ctx, lib, string(data), docVersion)
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", a.config.MigratePath, err)
	}

	text := string(doc.Encode())
	if a.config.OutPath == "" {
		_, err = fmt.Fprint(a.outW, text)
		return err
	}
	if err := writeFile(ctx, a.config.OutPath, text); err != nil {
		return err
	}
	logger.Info("Legacy document migrated.", "shader", doc.ShaderName, "passes", len(doc.Passes), "version", docVersion)
	return nil
}
