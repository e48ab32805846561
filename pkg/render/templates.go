package render

import "embed"

// Template names. A theme may point these at files through its partials.
const (
	TemplateError = "forms.error"
	TemplateField = "forms.field"
)

//go:embed templates/*.tpl
var defaultTemplates embed.FS

// defaultPaths maps template names to their built-in files.
var defaultPaths = map[string]string{
	TemplateError: "templates/forms.error.tpl",
	TemplateField: "templates/forms.field.tpl",
}
