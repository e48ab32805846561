package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formfield/pkg/field"
)

// FromSchema derives string rules from OpenAPI schema constraints. Supported
// keywords: minLength, maxLength, pattern, enum and format=email. required
// prepends Required.
func FromSchema(schema *openapi3.Schema, required bool) ([]field.Rule[string], error) {
	var out []field.Rule[string]
	if required {
		out = append(out, Required())
	}
	if schema == nil {
		return out, nil
	}

	if schema.MinLength > 0 {
		out = append(out, MinLen(int(schema.MinLength)))
	}
	if schema.MaxLength != nil {
		out = append(out, MaxLen(int(*schema.MaxLength)))
	}
	if pattern := strings.TrimSpace(schema.Pattern); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("rules: schema pattern %q: %w", pattern, err)
		}
		out = append(out, MatchRegexp(re))
	}
	if len(schema.Enum) > 0 {
		allowed := make([]string, 0, len(schema.Enum))
		for _, v := range schema.Enum {
			allowed = append(allowed, fmt.Sprint(v))
		}
		out = append(out, OneOf(allowed...))
	}
	if strings.EqualFold(schema.Format, "email") {
		out = append(out, Email())
	}
	return out, nil
}

// FromSchemaProperty resolves property on an object schema and derives its
// rules, honouring the parent's required list.
func FromSchemaProperty(parent *openapi3.Schema, property string) ([]field.Rule[string], error) {
	if parent == nil {
		return nil, fmt.Errorf("rules: schema is nil")
	}
	ref, ok := parent.Properties[property]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("rules: schema has no property %q", property)
	}
	required := false
	for _, name := range parent.Required {
		if name == property {
			required = true
			break
		}
	}
	return FromSchema(ref.Value, required)
}
