// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateEnv names the environment variable that rewrites golden files.
const UpdateEnv = "UPDATE_GOLDENS"

// MustReadGoldenString reads a golden file and returns its content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden file at path, ignoring leading
// and trailing whitespace.
func AssertGolden(t *testing.T, path, got string) {
	t.Helper()
	if WriteMaybeGolden(t, path, []byte(got+"\n")) {
		return
	}
	want := MustReadGoldenString(t, path)
	if diff := cmp.Diff(strings.TrimSpace(want), strings.TrimSpace(got)); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}
