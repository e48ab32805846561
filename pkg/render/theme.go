package render

import (
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme tokens read by the renderer.
const (
	TokenErrorClass = "field.error.class"
	TokenRowClass   = "field.row.class"
)

// DefaultThemeFallbacks maps template names to the partials used when a
// theme does not override them. Empty values select the built-in templates.
func DefaultThemeFallbacks() map[string]string {
	return map[string]string{
		TemplateError: "",
		TemplateField: "",
	}
}

// SelectTheme resolves name/variant through selector and flattens the
// selection into a renderer configuration.
func SelectTheme(selector theme.ThemeSelector, name, variant string, fallbacks map[string]string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, fmt.Errorf("render: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q/%q: %w", name, variant, err)
	}
	return ConfigFromSelection(selection, fallbacks), nil
}

// ConfigFromSelection merges manifest and variant tokens, partials and assets.
// Variant values override the manifest; fallbacks fill missing partials.
func ConfigFromSelection(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Partials: make(map[string]string),
		Tokens:   make(map[string]string),
		CSSVars:  make(map[string]string),
	}
	for key, value := range fallbacks {
		cfg.Partials[key] = value
	}
	if selection == nil {
		return cfg
	}
	cfg.Theme = selection.Theme
	cfg.Variant = selection.Variant

	prefix := ""
	assets := make(map[string]string)
	if manifest := selection.Manifest; manifest != nil {
		mergeStrings(cfg.Tokens, manifest.Tokens)
		mergeStrings(cfg.Partials, manifest.Templates)
		prefix = manifest.Assets.Prefix
		mergeStrings(assets, manifest.Assets.Files)

		if v, ok := manifest.Variants[selection.Variant]; ok {
			mergeStrings(cfg.Tokens, v.Tokens)
			mergeStrings(cfg.Partials, v.Templates)
			if strings.TrimSpace(v.Assets.Prefix) != "" {
				prefix = v.Assets.Prefix
			}
			mergeStrings(assets, v.Assets.Files)
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.ReplaceAll(key, ".", "-")] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := assets[key]
		if !ok {
			return ""
		}
		if prefix == "" || strings.Contains(file, "://") {
			return file
		}
		return path.Join(prefix, file)
	}
	return cfg
}

func mergeStrings(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}

// cssVarsStyle renders vars as a :root rule with keys in lexical order.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
