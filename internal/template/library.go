package template

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/fsutil"
	"github.com/specialistvlad/shadergen/internal/suggest"
)

// ErrTemplateNotFound is returned when a template reference matches neither
// a GUID nor a name in the library.
var ErrTemplateNotFound = errors.New("template not found")

// OfficialTemplates maps the GUIDs of the stock templates to their names.
var OfficialTemplates = map[string]string{
	"1976390536c6c564abb90fe41f6ee334": "SRP/Lightweight",
	"c71b220b631b6344493ea3cf87110c93": "Single Pass/Post Process",
	"6e114a916ca3e4b4bb51972669d463bf": "Single Pass/Default Unlit",
	"5056123faa0c79b47ab6ad7e8bf059a4": "Single Pass/Default UI",
	"0f8ba0101102bb14ebf021ddadce9b49": "Single Pass/Default Sprites",
	"0b6a9f8b4f707c74ca64c0be8e590de0": "Single Pass/Particles Alpha Blended",
	"e1de45c0d41f68c41b2cc20c8b9c05ef": "Multi Pass/Unlit",
}

const guidComment = "// guid:"

// Library holds every loaded template keyed by GUID.
type Library struct {
	byGUID map[string]*Template
}

func NewLibrary() *Library {
	return &Library{byGUID: make(map[string]*Template)}
}

// Add registers t. A second template with the same GUID is rejected.
func (l *Library) Add(t *Template) error {
	if _, exists := l.byGUID[t.GUID]; exists {
		return fmt.Errorf("template with guid '%s' already loaded", t.GUID)
	}
	l.byGUID[t.GUID] = t
	return nil
}

// Len returns the number of templates.
func (l *Library) Len() int { return len(l.byGUID) }

// Get returns the template with the given GUID.
func (l *Library) Get(guid string) (*Template, bool) {
	t, ok := l.byGUID[guid]
	return t, ok
}

// GetByName returns the template whose library name or in-body shader name
// equals name.
func (l *Library) GetByName(name string) (*Template, bool) {
	for _, t := range l.Templates() {
		if t.Name == name || t.DefaultShaderName == name {
			return t, true
		}
	}
	return nil, false
}

// Resolve looks ref up as a GUID first, then as a name.
func (l *Library) Resolve(ref string) (*Template, error) {
	if t, ok := l.Get(ref); ok {
		return t, nil
	}
	if t, ok := l.GetByName(ref); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: '%s'%s", ErrTemplateNotFound, ref, suggest.Hint(ref, l.Names()))
}

// Templates returns the templates ordered by name.
func (l *Library) Templates() []*Template {
	out := make([]*Template, 0, len(l.byGUID))
	for _, t := range l.byGUID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].GUID < out[j].GUID
	})
	return out
}

// Names returns every template name.
func (l *Library) Names() []string {
	var names []string
	for _, t := range l.Templates() {
		names = append(names, t.Name)
	}
	return names
}

// Source describes a template file to load.
type Source struct {
	Name string
	GUID string
	Path string
	SRP  bool
}

// LoadFile reads and parses one template file. A missing GUID is taken from
// a leading "// guid: <guid>" comment, then from the file path. Stock GUIDs
// get their stock names when no name is given.
func LoadFile(src Source) (*Template, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", src.Path, err)
	}
	body := strings.ReplaceAll(string(data), "\r\n", "\n")
	if src.GUID == "" {
		src.GUID = headerGUID(body)
	}
	if src.GUID == "" {
		src.GUID = filepath.ToSlash(src.Path)
	}
	if src.Name == "" {
		src.Name = OfficialTemplates[src.GUID]
	}
	t, err := Parse(src.Name, src.GUID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", src.Path, err)
	}
	t.Path = src.Path
	if src.SRP {
		t.setSRP(true)
	}
	return t, nil
}

func headerGUID(body string) string {
	sc := bufio.NewScanner(strings.NewReader(body))
	if !sc.Scan() {
		return ""
	}
	first := strings.TrimSpace(sc.Text())
	if guid, ok := strings.CutPrefix(first, guidComment); ok {
		return strings.TrimSpace(guid)
	}
	return ""
}

// LoadDir loads every .shader file under dir that carries the shader name
// marker. Shaders without it are not templates and are skipped.
func (l *Library) LoadDir(ctx context.Context, dir string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading templates from directory...", "path", dir)

	paths, err := fsutil.FindFilesByExtension(dir, ".shader")
	if err != nil {
		return fmt.Errorf("failed to walk template directory %s: %w", dir, err)
	}
	for _, path := range paths {
		t, err := LoadFile(Source{Path: path})
		if errors.Is(err, ErrNoShaderName) {
			logger.Debug("Skipping shader without template markers.", "path", path)
			continue
		}
		if err != nil {
			return err
		}
		if err := l.Add(t); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("Loaded template.", "name", t.Name, "guid", t.GUID, "passes", t.PassCount())
	}
	logger.Info("Template library loaded.", "templates", l.Len())
	return nil
}
