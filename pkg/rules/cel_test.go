package rules_test

import (
	"testing"

	"github.com/goliatone/go-formfield/pkg/rules"
)

func TestCEL_EvaluatesExpression(t *testing.T) {
	rule, err := rules.CEL("size(value) >= 3 && !value.startsWith('admin')", "Pick another name")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	res, err := eval(t, rule, "administrator")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.Message() != "Pick another name" {
		t.Fatalf("expected failure, got %+v", res)
	}

	res, err = eval(t, rule, "alice")
	if err != nil || res.Failed() {
		t.Fatalf("expected pass, got %+v (%v)", res, err)
	}
}

func TestCEL_CompileError(t *testing.T) {
	if _, err := rules.CEL("value >", "x"); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := rules.CEL("  ", "x"); err == nil {
		t.Fatalf("expected empty expression error")
	}
}

func TestCEL_NonBoolIsException(t *testing.T) {
	rule := rules.MustCEL("value + '!'", "x")
	if _, err := eval(t, rule, "hi"); err == nil {
		t.Fatalf("expected exception for non-bool result")
	}
}
