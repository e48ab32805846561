package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newFileDriver(t *testing.T) (PromptDriver, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.txt")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create output: %v", err)
	}
	t.Cleanup(func() { _ = out.Close() })
	in, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open input: %v", err)
	}
	t.Cleanup(func() { _ = in.Close() })
	return NewSurveyDriver(in, out), path
}

func TestSurveyDriver_NotifyWritesLine(t *testing.T) {
	driver, path := newFileDriver(t)
	if err := driver.Notify(context.Background(), "✗ Invalid Email: required"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "✗ Invalid Email: required\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSurveyDriver_CancelledContextSkipsPrompt(t *testing.T) {
	driver, _ := newFileDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := Question{Label: "Password", Default: "ignored"}
	if _, err := driver.AskSecret(ctx, q); !errors.Is(err, context.Canceled) {
		t.Fatalf("AskSecret: expected context.Canceled, got %v", err)
	}
	if _, err := driver.Ask(ctx, q); !errors.Is(err, context.Canceled) {
		t.Fatalf("Ask: expected context.Canceled, got %v", err)
	}
	if _, err := driver.Confirm(ctx, "Submit?", true); !errors.Is(err, context.Canceled) {
		t.Fatalf("Confirm: expected context.Canceled, got %v", err)
	}
}

func TestSurveyDriver_ChooseRequiresOptions(t *testing.T) {
	driver, _ := newFileDriver(t)
	idx, err := driver.Choose(context.Background(), Question{Label: "Plan"})
	if err == nil || idx != -1 {
		t.Fatalf("expected error and -1, got %d, %v", idx, err)
	}
}
