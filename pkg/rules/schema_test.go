package rules_test

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formfield/pkg/rules"
)

func TestFromSchema_DerivesConstraints(t *testing.T) {
	maxLen := uint64(8)
	schema := &openapi3.Schema{
		MinLength: 3,
		MaxLength: &maxLen,
		Pattern:   `^[a-z@.]+$`,
		Format:    "email",
	}

	derived, err := rules.FromSchema(schema, true)
	if err != nil {
		t.Fatalf("from schema: %v", err)
	}
	if len(derived) != 5 {
		t.Fatalf("expected 5 rules, got %d", len(derived))
	}

	cases := map[string]string{
		"":          rules.RequiredMessage,
		"ab":        "Must be at least 3 characters",
		"abcdefghi": "Must be at most 8 characters",
		"ABC":       "Invalid format",
		"abc":       "Invalid email address",
		"a@b.io":    "",
	}
	for value, want := range cases {
		got := ""
		for _, rule := range derived {
			res, err := eval(t, rule, value)
			if err != nil {
				t.Fatalf("evaluate %q: %v", value, err)
			}
			if res.Failed() {
				got = res.Message()
				break
			}
		}
		if got != want {
			t.Fatalf("value %q: want %q, got %q", value, want, got)
		}
	}
}

func TestFromSchema_BadPattern(t *testing.T) {
	if _, err := rules.FromSchema(&openapi3.Schema{Pattern: "("}, false); err == nil {
		t.Fatalf("expected pattern error")
	}
}

func TestFromSchemaProperty_UsesParentRequired(t *testing.T) {
	parent := &openapi3.Schema{
		Required: []string{"status"},
		Properties: openapi3.Schemas{
			"status": &openapi3.SchemaRef{Value: &openapi3.Schema{Enum: []any{"draft", "live"}}},
		},
	}
	derived, err := rules.FromSchemaProperty(parent, "status")
	if err != nil {
		t.Fatalf("from property: %v", err)
	}
	if len(derived) != 2 {
		t.Fatalf("expected required + enum rules, got %d", len(derived))
	}
	if _, err := rules.FromSchemaProperty(parent, "missing"); err == nil {
		t.Fatalf("expected error for unknown property")
	}
}
