package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

const formsYAML = `
forms:
  signup:
    fields:
      - name: email
        label: Email
        transform: [trim]
        rules:
          - kind: required
          - kind: email
      - name: password
        secret: true
        rules:
          - kind: min
            value: 8
      - name: plan
        initial: free
        rules:
          - kind: oneOf
            values: [free, pro]
`

func writeForms(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "forms.yaml"), []byte(formsYAML), 0o644); err != nil {
		t.Fatalf("write forms: %v", err)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, a, err := runApp(t, args...)
	a.close()
	return out, err
}

// runApp executes the command tree and leaves closing the app to the caller.
func runApp(t *testing.T, args ...string) (string, *app, error) {
	t.Helper()
	cmd, a := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), a, err
}

func TestCheck_Valid(t *testing.T) {
	dir := writeForms(t)
	out, err := run(t, "check", "--config", dir,
		"--set", "email= ada@example.com ",
		"--set", "password=long enough",
	)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}

	var report checkReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	want := checkReport{
		Form:  "signup",
		Valid: true,
		Values: map[string]any{
			"email":    "ada@example.com",
			"password": "long enough",
			"plan":     "free",
		},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_Invalid(t *testing.T) {
	dir := writeForms(t)
	out, err := run(t, "check", "--config", dir, "--form", "signup",
		"--set", "email=nope",
		"--set", "plan=enterprise",
	)
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected errInvalid, got %v", err)
	}

	var report checkReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Valid {
		t.Fatalf("expected invalid report")
	}
	if report.Errors["email"] != "Invalid email address" {
		t.Fatalf("email error: got %q", report.Errors["email"])
	}
	if report.Errors["plan"] == "" {
		t.Fatalf("expected plan error, got %v", report.Errors)
	}
	if _, ok := report.Errors["password"]; ok {
		t.Fatalf("empty password skips min length, got %v", report.Errors)
	}
}

func TestCheck_UnknownField(t *testing.T) {
	dir := writeForms(t)
	_, err := run(t, "check", "--config", dir, "--set", "ghost=1")
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestCheck_MissingForm(t *testing.T) {
	dir := writeForms(t)
	if _, err := run(t, "check", "--config", dir, "--form", "login"); err == nil {
		t.Fatalf("expected missing form error")
	}
}

func TestRender_ErrorNodesAndServerErrors(t *testing.T) {
	dir := writeForms(t)
	errorsPath := filepath.Join(dir, "errors.yaml")
	payload := "password: [\"Password is too common\"]\nform: [\"Signups are paused\"]\n"
	if err := os.WriteFile(errorsPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write errors: %v", err)
	}

	out, err := run(t, "render", "--config", dir,
		"--set", "email=bad",
		"--errors", errorsPath,
		"--token", "field.error.class=text-red",
	)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}

	for _, want := range []string{
		`<p class="form-error" role="alert">Signups are paused</p>`,
		`class="text-red" id="field-email-error"`,
		`>Invalid email address</div>`,
		`>Password is too common</div>`,
		`type="password"`,
		`--field-error-class: text-red;`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestClose_StopsMetricsServerAfterFailedCommand(t *testing.T) {
	dir := writeForms(t)
	_, a, err := runApp(t, "check", "--config", dir, "--metrics-addr", "127.0.0.1:0",
		"--set", "email=nope",
	)
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected errInvalid, got %v", err)
	}
	srv := a.server
	if srv == nil {
		t.Fatalf("metrics server should still be running until close")
	}

	a.close()
	if a.server != nil {
		t.Fatalf("close should release the metrics server")
	}
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("expected server closed, got %v", err)
	}
	a.close()
}
