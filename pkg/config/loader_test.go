package config

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
)

const signupYAML = `
forms:
  signup:
    title: Create account
    fields:
      - name: email
        label: Email address
        debounce: 300ms
        transform: [trim, lower]
        rules:
          - kind: required
          - kind: email
      - name: password
        secret: true
        debounce: 150
        rules:
          - kind: min
            value: 8
            message: Too short
      - name: confirm
        validateOnChange: false
        rules:
          - kind: equalTo
            field: password
`

func TestLoadFS_ParsesDefinitions(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/signup.yaml":  {Data: []byte(signupYAML)},
		"forms/README.md":    {Data: []byte("ignored")},
		"forms/profile.json": {Data: []byte(`{"forms":{"profile":{"fields":[{"name":"user.name","rules":[{"kind":"required"}]}]}}}`)},
	}

	store, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"profile", "signup"}, store.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	signup, ok := store.Form("signup")
	if !ok {
		t.Fatalf("signup form missing")
	}
	if signup.Name != "signup" || signup.Source != "forms/signup.yaml" {
		t.Fatalf("unexpected identity: %q %q", signup.Name, signup.Source)
	}
	if len(signup.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(signup.Fields))
	}

	email := signup.Fields[0]
	if got := email.Debounce.Std(); got != 300*time.Millisecond {
		t.Fatalf("email debounce: got %s", got)
	}
	if got := signup.Fields[1].Debounce.Std(); got != 150*time.Millisecond {
		t.Fatalf("password debounce: got %s", got)
	}
	if diff := cmp.Diff([]string{"trim", "lower"}, email.Transform); diff != "" {
		t.Fatalf("transform mismatch (-want +got):\n%s", diff)
	}
	confirm := signup.Fields[2]
	if confirm.ValidateOnChange == nil || *confirm.ValidateOnChange {
		t.Fatalf("expected validateOnChange=false, got %v", confirm.ValidateOnChange)
	}
	if confirm.ValidateOnBlur != nil {
		t.Fatalf("expected validateOnBlur unset")
	}

	profile, _ := store.Form("profile")
	if got := profile.Fields[0].DisplayLabel(); got != "Name" {
		t.Fatalf("display label: got %q", got)
	}
}

func TestLoadFS_RejectsDuplicates(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"duplicate form": {
			"a.yaml": {Data: []byte("forms:\n  login:\n    fields: []\n")},
			"b.yaml": {Data: []byte("forms:\n  login:\n    fields: []\n")},
		},
		"duplicate field": {
			"a.yaml": {Data: []byte("forms:\n  login:\n    fields:\n      - name: user\n      - name: user\n")},
		},
		"unnamed field": {
			"a.yaml": {Data: []byte("forms:\n  login:\n    fields:\n      - label: User\n")},
		},
		"empty file": {
			"a.yml": {Data: []byte("  \n")},
		},
	}

	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFS(fsys); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDuration_RejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("forms:\n  x:\n    fields:\n      - name: a\n        debounce: soon\n"), "inline.yaml")
	if err == nil || !strings.Contains(err.Error(), "inline.yaml") {
		t.Fatalf("expected parse error naming the source, got %v", err)
	}
}
