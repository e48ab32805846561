package render

import (
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfield/pkg/field"
	"github.com/goliatone/go-formfield/pkg/form"
)

const (
	// DefaultErrorClass is used when neither the caller nor the theme supply
	// a class for error nodes.
	DefaultErrorClass = "field-error"
	// DefaultRowClass is the base class of rendered field rows.
	DefaultRowClass = "field"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplate overrides the inline source for a template name
// (TemplateError or TemplateField).
func WithTemplate(name, source string) Option {
	return func(r *Renderer) {
		if name = strings.TrimSpace(name); name != "" {
			r.sources[name] = source
		}
	}
}

// WithFS supplies the file system theme partials are loaded from.
func WithFS(files fs.FS) Option {
	return func(r *Renderer) {
		r.files = files
	}
}

// WithTheme applies a resolved theme configuration. Partials that name a
// file replace the built-in templates; tokens supply default classes.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer renders error nodes and field rows.
type Renderer struct {
	files   fs.FS
	theme   *theme.RendererConfig
	logger  *zap.Logger
	sources map[string]string
	engine  *engine
}

// FieldMeta carries presentation attributes that field state does not hold.
type FieldMeta struct {
	Label       string
	Help        string
	Placeholder string
	Secret      bool
}

// New constructs a Renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{
		logger:  zap.NewNop(),
		sources: make(map[string]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	r.engine = newEngine(r.files, r.sources)
	return r
}

// Error renders the error node for f. It returns "" unless the field has been
// touched, is invalid and carries a message. className falls back to the
// theme token field.error.class, then DefaultErrorClass.
func (r *Renderer) Error(f field.Field, className string) (template.HTML, error) {
	if f == nil {
		return "", nil
	}
	return r.errorNode(f.Snapshot(), className)
}

func (r *Renderer) errorNode(snap field.Snapshot, className string) (template.HTML, error) {
	if !snap.ShowError() {
		return "", nil
	}
	message := sanitizeMessage(snap.Error)
	if message == "" {
		return "", nil
	}

	out, err := r.engine.execute(r.templateName(TemplateError), pongo2.Context{
		"class":   r.class(className, TokenErrorClass, DefaultErrorClass),
		"id":      errorID(snap.Name),
		"message": message,
		"name":    snap.Name,
	})
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

// Field renders a complete input row for f: label, input carrying the value
// and status, optional help text and the error node.
func (r *Renderer) Field(f field.Field, meta FieldMeta) (template.HTML, error) {
	if f == nil {
		return "", fmt.Errorf("render: field is nil")
	}
	snap := f.Snapshot()

	errNode, err := r.errorNode(snap, "")
	if err != nil {
		return "", err
	}

	inputType := "text"
	value := ""
	if meta.Secret {
		inputType = "password"
	} else if snap.Value != nil {
		value = fmt.Sprint(snap.Value)
	}

	label := strings.TrimSpace(meta.Label)
	if label == "" {
		label = snap.Name
	}

	out, err := r.engine.execute(r.templateName(TemplateField), pongo2.Context{
		"row_class":   r.class("", TokenRowClass, DefaultRowClass),
		"status":      string(snap.Status()),
		"name":        snap.Name,
		"id":          fieldID(snap.Name),
		"error_id":    errorID(snap.Name),
		"label":       label,
		"type":        inputType,
		"value":       value,
		"placeholder": meta.Placeholder,
		"help":        sanitizeHelp(meta.Help),
		"error":       string(errNode),
	})
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

// Form renders every field of f in order. meta is keyed by field name.
func (r *Renderer) Form(f *form.Form, meta map[string]FieldMeta) (template.HTML, error) {
	if f == nil {
		return "", fmt.Errorf("render: form is nil")
	}
	var b strings.Builder
	for _, fld := range f.Fields() {
		row, err := r.Field(fld, meta[fld.Name()])
		if err != nil {
			r.logger.Warn("render field failed", zap.String("field", fld.Name()), zap.Error(err))
			return "", fmt.Errorf("render: field %q: %w", fld.Name(), err)
		}
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	return template.HTML(b.String()), nil
}

// Stylesheet returns the theme tokens as CSS custom properties, or "" when no
// theme is configured.
func (r *Renderer) Stylesheet() string {
	if r.theme == nil {
		return ""
	}
	return cssVarsStyle(r.theme.CSSVars)
}

func (r *Renderer) class(explicit, token, fallback string) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}
	if r.theme != nil {
		if value := strings.TrimSpace(r.theme.Tokens[token]); value != "" {
			return value
		}
	}
	return fallback
}

// templateName maps a template to the theme partial path when one is set and
// a file system is available to load it from.
func (r *Renderer) templateName(name string) string {
	if r.theme == nil || r.files == nil {
		return name
	}
	if partial := strings.TrimSpace(r.theme.Partials[name]); partial != "" {
		return partial
	}
	return name
}

func fieldID(name string) string {
	return "field-" + strings.NewReplacer(".", "-", "[", "-", "]", "").Replace(name)
}

func errorID(name string) string {
	return fieldID(name) + "-error"
}
