package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfield/pkg/config"
	"github.com/goliatone/go-formfield/pkg/field"
)

// load resolves --config/--form into a built form wired to the app logger
// and metrics collector.
func (a *app) load(ctx context.Context) (*config.Built, error) {
	fsys := os.DirFS(a.configDir)
	store, err := config.LoadFS(fsys)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(a.formName)
	if name == "" {
		names := store.Names()
		if len(names) != 1 {
			return nil, fmt.Errorf("formfield: --form is required (available: %s)", strings.Join(names, ", "))
		}
		name = names[0]
	}
	def, ok := store.Form(name)
	if !ok {
		return nil, fmt.Errorf("formfield: form %q not found in %s", name, a.configDir)
	}

	opts := []config.BuildOption{
		config.WithLogger(a.logger.With(zap.String("form", name))),
		config.WithObserver(a.collector),
		config.WithContext(ctx),
	}
	if a.openapiPath != "" {
		var doc *openapi3.T
		doc, err = config.LoadOpenAPI(ctx, fsys, a.openapiPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithOpenAPI(doc))
	}
	return config.Build(def, opts...)
}

// parseAssignments turns repeated key=value flags into url.Values.
func parseAssignments(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("formfield: expected key=value, got %q", pair)
		}
		values.Set(key, value)
	}
	return values, nil
}

// applyValues feeds submitted values through each field's input binding. Keys
// that match no field are rejected.
func applyValues(built *config.Built, values url.Values) error {
	known := make(map[string]struct{}, len(values))
	for _, fld := range built.Form.Fields() {
		c, ok := built.Controller(fld.Name())
		if !ok {
			continue
		}
		if field.BindInput(c).FromValues(values) {
			known[fld.Name()] = struct{}{}
		}
	}

	var unknown []string
	for key := range values {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("formfield: unknown fields: %s", strings.Join(unknown, ", "))
	}
	return nil
}
