package render

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// engine compiles and caches pongo2 templates. Inline sources registered by
// name win over files from the optional fs.FS, which win over the embedded
// defaults.
type engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	sources   map[string]string
	templates map[string]*pongo2.Template
}

func newEngine(files fs.FS, sources map[string]string) *engine {
	// pongo2 refuses a set without loaders; the embedded defaults are
	// always the last one
	var loaders []pongo2.TemplateLoader
	if files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}
	loaders = append(loaders, pongo2.NewFSLoader(defaultTemplates))
	registerDefaultFilters()

	e := &engine{
		set:       pongo2.NewSet("formfield", loaders...),
		sources:   make(map[string]string, len(sources)),
		templates: make(map[string]*pongo2.Template),
	}
	for name, src := range sources {
		e.sources[name] = src
	}
	return e
}

// execute renders the named template. Names without an inline source are
// resolved through the loaders, built-in names through their embedded file.
func (e *engine) execute(name string, data pongo2.Context) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("render: engine is nil")
	}
	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Execute(data)
	if err != nil {
		return "", fmt.Errorf("render: execute template %q: %w", name, err)
	}
	return out, nil
}

func (e *engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[name]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}

	var (
		tmpl *pongo2.Template
		err  error
	)
	switch src, ok := e.sources[name]; {
	case ok:
		tmpl, err = e.set.FromString(src)
	case defaultPaths[name] != "":
		tmpl, err = e.set.FromFile(defaultPaths[name])
	default:
		tmpl, err = e.set.FromFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("render: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
