package unit

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Template names, also the file names looked up in a templates directory.
const (
	ServiceTemplate = "service.tmpl"
	TargetTemplate  = "target.tmpl"
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// ServiceData is the data a service unit template is executed with.
type ServiceData struct {
	Project   string
	Service   string
	Unit      string
	Container string
	Image     string

	// Engine is the container engine binary, e.g. /usr/bin/docker.
	Engine string

	// RestartSec is the fixed restart backoff, e.g. 10s.
	RestartSec string

	// Target is the aggregate target the unit is part of.
	Target string

	Dependencies []string
	Args         []Fragment
	Command      []string
}

// TargetData is the data the target template is executed with.
type TargetData struct {
	Project string
	Target  string
	Units   []string
}

// Renderer executes the service and target templates. A Renderer is created
// per run and safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer returns a Renderer using the built-in templates.
func NewRenderer() (*Renderer, error) {
	return newRenderer(defaultTemplates, "templates")
}

// NewRendererFromDir returns a Renderer preferring service.tmpl and
// target.tmpl from dir. Templates missing from dir fall back to the built-in
// ones.
func NewRendererFromDir(dir string) (*Renderer, error) {
	if dir == "" {
		return NewRenderer()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates directory: %s is not a directory", dir)
	}

	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	for _, name := range []string{ServiceTemplate, TargetTemplate} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		if _, err := r.tmpl.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
	}

	return r, nil
}

func newRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	tmpl := template.New("unit").
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Funcs(unitFuncs())

	for _, name := range []string{ServiceTemplate, TargetTemplate} {
		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
	}

	return &Renderer{tmpl: tmpl}, nil
}

// unitFuncs returns the template functions specific to unit files.
func unitFuncs() template.FuncMap {
	return template.FuncMap{
		"quoteUnit": Quote,
	}
}

// RenderService renders a service unit.
func (r *Renderer) RenderService(data ServiceData) (string, error) {
	return r.execute(ServiceTemplate, data)
}

// RenderTarget renders the aggregate target unit.
func (r *Renderer) RenderTarget(data TargetData) (string, error) {
	return r.execute(TargetTemplate, data)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
