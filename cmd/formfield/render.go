package main

import (
	"fmt"
	"html"
	"os"
	"path/filepath"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formfield/pkg/config"
	"github.com/goliatone/go-formfield/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		assignments []string
		errorsFile  string
		themeFile   string
		variant     string
		tokens      []string
		validate    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print server-rendered HTML rows for a form, including error nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			built, err := a.load(ctx)
			if err != nil {
				return err
			}
			defer built.Form.Dispose()

			values, err := parseAssignments(assignments)
			if err != nil {
				return err
			}
			if err := applyValues(built, values); err != nil {
				return err
			}
			if validate {
				built.Form.Validate(ctx)
			}
			if err := built.Form.Settle(ctx); err != nil {
				return err
			}

			var formErrors []string
			if errorsFile != "" {
				payload, err := readErrorPayload(errorsFile)
				if err != nil {
					return err
				}
				formErrors, err = built.Form.ApplyErrors(ctx, payload)
				if err != nil {
					return err
				}
			}

			opts := []render.Option{render.WithLogger(a.logger)}
			themeCfg, err := loadTheme(themeFile, variant, tokens)
			if err != nil {
				return err
			}
			if themeCfg != nil {
				opts = append(opts, render.WithTheme(themeCfg))
				if themeFile != "" {
					opts = append(opts, render.WithFS(os.DirFS(filepath.Dir(themeFile))))
				}
			}
			r := render.New(opts...)

			rows, err := r.Form(built.Form, renderMeta(built))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if css := r.Stylesheet(); css != "" {
				fmt.Fprintf(w, "<style>\n%s\n</style>\n", css)
			}
			for _, msg := range formErrors {
				fmt.Fprintf(w, "<p class=\"form-error\" role=\"alert\">%s</p>\n", html.EscapeString(msg))
			}
			_, err = fmt.Fprint(w, string(rows))
			return err
		},
	}
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringVar(&errorsFile, "errors", "", "YAML/JSON server error payload mapped onto the fields")
	cmd.Flags().StringVar(&themeFile, "theme", "", "Theme manifest (YAML)")
	cmd.Flags().StringVar(&variant, "variant", "", "Theme variant")
	cmd.Flags().StringArrayVar(&tokens, "token", nil, "Theme token override as key=value (repeatable)")
	cmd.Flags().BoolVar(&validate, "validate", true, "Validate every field before rendering")
	return cmd
}

func renderMeta(built *config.Built) map[string]render.FieldMeta {
	meta := make(map[string]render.FieldMeta, len(built.Def.Fields))
	for _, def := range built.Def.Fields {
		meta[def.Name] = render.FieldMeta{
			Label:       def.DisplayLabel(),
			Help:        def.Help,
			Placeholder: def.Placeholder,
			Secret:      def.Secret,
		}
	}
	return meta
}

func readErrorPayload(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formfield: read errors: %w", err)
	}
	var payload map[string][]string
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("formfield: parse errors %s: %w", path, err)
	}
	return payload, nil
}

// loadTheme reads an optional manifest and applies token overrides. It
// returns nil when neither is given.
func loadTheme(path, variant string, overrides []string) (*theme.RendererConfig, error) {
	if path == "" && len(overrides) == 0 {
		return nil, nil
	}

	manifest := &theme.Manifest{Name: "cli", Tokens: map[string]string{}}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("formfield: read theme: %w", err)
		}
		if err := yaml.Unmarshal(data, manifest); err != nil {
			return nil, fmt.Errorf("formfield: parse theme %s: %w", path, err)
		}
		if manifest.Tokens == nil {
			manifest.Tokens = map[string]string{}
		}
	}

	tokens, err := parseAssignments(overrides)
	if err != nil {
		return nil, err
	}
	for key := range tokens {
		manifest.Tokens[key] = tokens.Get(key)
	}

	selection := &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}
	return render.ConfigFromSelection(selection, render.DefaultThemeFallbacks()), nil
}
