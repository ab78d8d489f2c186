package export

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// ErrTemplateExists is returned when dumping over an existing custom template.
var ErrTemplateExists = errors.New("custom template already exists")

// Generator renders brands, preferring custom templates in a directory over
// the embedded defaults.
type Generator struct {
	fs     afero.Fs
	dir    string
	embed  embed.FS
	logger hclog.Logger
}

// NewGenerator creates a Generator. Custom templates are read from dir on fs;
// an empty dir disables overrides.
func NewGenerator(fsys afero.Fs, dir string, logger hclog.Logger) *Generator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Generator{fs: fsys, dir: dir, embed: templates, logger: logger}
}

// TemplateNames lists the embedded templates.
func TemplateNames() ([]string, error) {
	var names []string
	err := fs.WalkDir(templates, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".tmpl" {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded templates: %w", err)
	}
	return names, nil
}

// CustomPath returns where a custom version of the named template lives.
func (g *Generator) CustomPath(name string) string {
	return filepath.Join(g.dir, name)
}

// HasCustomTemplate reports whether a custom template overrides name.
func (g *Generator) HasCustomTemplate(name string) bool {
	if g.dir == "" {
		return false
	}
	ok, err := afero.Exists(g.fs, g.CustomPath(name))
	return err == nil && ok
}

// loadTemplate reads a custom template when present, else the embedded one.
func (g *Generator) loadTemplate(name string) ([]byte, error) {
	if g.HasCustomTemplate(name) {
		path := g.CustomPath(name)
		content, err := afero.ReadFile(g.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read custom template %s: %w", path, err)
		}
		g.logger.Debug("using custom template", "path", path)
		return content, nil
	}

	content, err := g.embed.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %q: %w", name, err)
	}
	return content, nil
}

// DumpTemplates writes the embedded templates into the custom directory so
// they can be edited. Existing files are kept unless force is set; they are
// reported with ErrTemplateExists after the rest are written.
func (g *Generator) DumpTemplates(force bool) ([]string, error) {
	if g.dir == "" {
		return nil, fmt.Errorf("no custom template directory configured")
	}
	names, err := TemplateNames()
	if err != nil {
		return nil, err
	}
	if err := g.fs.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %q: %w", g.dir, err)
	}

	var (
		dumped  []string
		skipped []error
	)
	for _, name := range names {
		path := g.CustomPath(name)
		if !force && g.HasCustomTemplate(name) {
			skipped = append(skipped, fmt.Errorf("%w: %s", ErrTemplateExists, path))
			continue
		}
		content, err := g.embed.ReadFile(name)
		if err != nil {
			return dumped, fmt.Errorf("failed to read embedded template %q: %w", name, err)
		}
		if err := afero.WriteFile(g.fs, path, content, 0o644); err != nil {
			return dumped, fmt.Errorf("failed to write template to %q: %w", path, err)
		}
		dumped = append(dumped, path)
	}
	return dumped, errors.Join(skipped...)
}
