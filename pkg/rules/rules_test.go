package rules_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-formfield/pkg/field"
	"github.com/goliatone/go-formfield/pkg/rules"
)

func eval(t *testing.T, rule field.Rule[string], value string) (field.Result, error) {
	t.Helper()
	return rule(context.Background(), value)
}

func TestBuiltins(t *testing.T) {
	cases := []struct {
		name    string
		rule    field.Rule[string]
		value   string
		message string
	}{
		{name: "required blank", rule: rules.Required(), value: "  ", message: rules.RequiredMessage},
		{name: "required filled", rule: rules.Required(), value: "x"},
		{name: "email ok", rule: rules.Email(), value: "a@b.com"},
		{name: "email empty skipped", rule: rules.Email(), value: ""},
		{name: "email missing at", rule: rules.Email(), value: "ab.com", message: "Invalid email address"},
		{name: "email no tld", rule: rules.Email(), value: "a@b", message: "Invalid email address"},
		{name: "email trailing dot", rule: rules.Email(), value: "a@b.", message: "Invalid email address"},
		{name: "min short", rule: rules.MinLen(3), value: "ab", message: "Must be at least 3 characters"},
		{name: "min runes", rule: rules.MinLen(3), value: "äöü"},
		{name: "min empty skipped", rule: rules.MinLen(3), value: ""},
		{name: "max long", rule: rules.MaxLen(2), value: "abc", message: "Must be at most 2 characters"},
		{name: "match", rule: rules.Match(`^[a-z]+$`), value: "abc"},
		{name: "match fails", rule: rules.Match(`^[a-z]+$`), value: "ABC", message: "Invalid format"},
		{name: "oneof", rule: rules.OneOf("draft", "published"), value: "draft"},
		{name: "oneof fails", rule: rules.OneOf("draft", "published"), value: "x", message: "Must be one of: draft, published"},
		{name: "message override", rule: rules.Message(rules.Required(), "Name please"), value: "", message: "Name please"},
		{name: "lift", rule: rules.Lift(func(string) error { return errors.New("nope") }), value: "x", message: "nope"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := eval(t, tc.rule, tc.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.Message(); got != tc.message {
				t.Fatalf("message mismatch: want %q, got %q", tc.message, got)
			}
			if result.Failed() != (tc.message != "") {
				t.Fatalf("failed flag mismatch for %q", tc.value)
			}
		})
	}
}

func TestNotZero(t *testing.T) {
	rule := rules.NotZero[int]()
	if res, _ := rule(context.Background(), 0); !res.Failed() {
		t.Fatalf("expected zero to fail")
	}
	if res, _ := rule(context.Background(), 3); res.Failed() {
		t.Fatalf("expected non-zero to pass")
	}
}

func TestEqualTo_ReadsCommittedValue(t *testing.T) {
	password := field.New(field.WithInitial("secret"))
	defer password.Dispose()

	confirm := field.New(field.WithRules(rules.EqualTo(password, "")))
	defer confirm.Dispose()

	confirm.SetValue("other")
	if confirm.Validate(context.Background()) {
		t.Fatalf("expected mismatch")
	}
	if got := confirm.Err(); got != "Values do not match" {
		t.Fatalf("message mismatch: got %q", got)
	}

	confirm.SetValue("secret")
	if !confirm.Validate(context.Background()) {
		t.Fatalf("expected match, got %q", confirm.Err())
	}
}

func TestAsync_ErrorIsException(t *testing.T) {
	boom := errors.New("timeout")
	rule := rules.Async(func(context.Context, string) (bool, error) { return false, boom }, "taken")
	if _, err := eval(t, rule, "x"); !errors.Is(err, boom) {
		t.Fatalf("expected exception, got %v", err)
	}

	rule = rules.Async(func(_ context.Context, v string) (bool, error) { return v != "admin", nil }, "taken")
	if res, _ := eval(t, rule, "admin"); res.Message() != "taken" {
		t.Fatalf("expected failure message")
	}
}

func TestAsync_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	rule := rules.Async(func(context.Context, string) (bool, error) {
		called = true
		return true, nil
	}, "taken")
	if _, err := rule(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if called {
		t.Fatalf("check must not run with a cancelled context")
	}
}
