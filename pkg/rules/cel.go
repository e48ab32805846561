package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/goliatone/go-formfield/pkg/field"
)

// CEL compiles a boolean CEL expression over the string variable `value`.
// The rule fails with message when the expression evaluates to false.
// Evaluation errors and non-bool results are rule exceptions.
//
//	rules.CEL("value.size() >= 3 && !value.startsWith('admin')", "Pick another name")
func CEL(expr, message string) (field.Rule[string], error) {
	source := strings.TrimSpace(expr)
	if source == "" {
		return nil, fmt.Errorf("rules: cel expression is empty")
	}

	env, err := cel.NewEnv(cel.Variable("value", cel.StringType))
	if err != nil {
		return nil, fmt.Errorf("rules: cel environment: %w", err)
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("rules: compile %q: %w", source, issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("rules: program %q: %w", source, err)
	}

	if message == "" {
		message = field.DefaultFailureMessage
	}

	return func(ctx context.Context, value string) (field.Result, error) {
		out, _, err := program.ContextEval(ctx, map[string]any{"value": value})
		if err != nil {
			return field.Pass(), fmt.Errorf("rules: evaluate %q: %w", source, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return field.Pass(), fmt.Errorf("rules: expression %q returned %T, want bool", source, out.Value())
		}
		if !ok {
			return field.Fail(message), nil
		}
		return field.Pass(), nil
	}, nil
}

// MustCEL is like CEL but panics on compile errors.
func MustCEL(expr, message string) field.Rule[string] {
	rule, err := CEL(expr, message)
	if err != nil {
		panic(err)
	}
	return rule
}
