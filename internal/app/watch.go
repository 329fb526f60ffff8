package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
)

// debounce collapses the burst of events an editor save produces into one
// rebuild.
const debounce = 200 * time.Millisecond

// watch rebuilds whenever a template or project file changes, until ctx is
// cancelled. Build failures are logged and do not stop the loop.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer w.Close()

	dirs := a.watchDirs()
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch '%s': %w", dir, err)
		}
	}
	logger.Info("Watching for changes.", "dirs", dirs)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("Watch stopped.")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !a.relevant(ev) {
				continue
			}
			logger.Debug("Change detected.", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		case <-fire:
			fire = nil
			err := a.build(ctx)
			a.setBuildResult(err)
			if err != nil {
				logger.Error("Rebuild failed.", "error", err)
			}
		}
	}
}

// watchDirs lists the existing directories holding templates and project
// files. fsnotify watches directories, so a project file is covered
// through its parent.
func (a *App) watchDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if !info.IsDir() {
			path = filepath.Dir(path)
		}
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			dirs = append(dirs, path)
		}
	}
	add(a.config.TemplatesPath)
	add(a.config.ProjectPath)
	return dirs
}

// relevant reports whether ev touches a source the build reads. Files the
// build writes itself are ignored.
func (a *App) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	for _, own := range []string{a.config.OutPath, a.config.SavePath} {
		if own != "" && within(ev.Name, own) {
			return false
		}
	}
	switch filepath.Ext(ev.Name) {
	case shaderExt, ".hcl":
		return true
	}
	return false
}

func within(path, root string) bool {
	path, root = filepath.Clean(path), filepath.Clean(root)
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}
