package config

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/getkin/kin-openapi/openapi3"
)

// LoadOpenAPI reads and validates an OpenAPI document used by schema rules.
func LoadOpenAPI(ctx context.Context, fsys fs.FS, path string) (*openapi3.T, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("config: read openapi %s: %w", path, err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse openapi %s: %w", path, err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("config: validate openapi %s: %w", path, err)
	}
	return doc, nil
}
