package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/goliatone/go-formfield/pkg/field"
	"github.com/goliatone/go-formfield/pkg/rules"
)

func typeRunes(t *testing.T, m FieldModel, s string) FieldModel {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(FieldModel)
}

func press(t *testing.T, m FieldModel, key tea.KeyType) (FieldModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(FieldModel), cmd
}

// submit presses Enter and feeds the validation command's message back into
// the model, as the bubbletea runtime would.
func submit(t *testing.T, m FieldModel) (FieldModel, tea.Cmd) {
	t.Helper()
	m, cmd := press(t, m, tea.KeyEnter)
	if cmd == nil {
		t.Fatalf("expected a validation command")
	}
	next, cmd := m.Update(cmd())
	return next.(FieldModel), cmd
}

func TestFieldModel_TypingFeedsController(t *testing.T) {
	c := field.New(field.WithName[string]("handle"), field.WithRules(rules.MinLen(3)))
	defer c.Dispose()

	m := NewFieldModel(context.Background(), c, FieldMeta{Label: "Handle"})
	if !c.State().Visited {
		t.Fatalf("expected controller to be focused")
	}

	m = typeRunes(t, m, "ab")
	if got := c.Value(); got != "ab" {
		t.Fatalf("controller value: got %q", got)
	}
	if err := c.Settle(context.Background()); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if strings.Contains(m.View(), "Must be at least") {
		t.Fatalf("error shown before blur:\n%s", m.View())
	}

	m, _ = submit(t, m)
	if m.Submitted() {
		t.Fatalf("invalid value must not submit")
	}
	if !strings.Contains(m.View(), "Must be at least 3 characters") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}

	m = typeRunes(t, m, "c")
	m, cmd := submit(t, m)
	if !m.Submitted() || cmd == nil {
		t.Fatalf("expected submission with quit command")
	}
	if got := c.Value(); got != "abc" {
		t.Fatalf("controller value: got %q", got)
	}
}

func TestFieldModel_EscAborts(t *testing.T) {
	c := field.New(field.WithName[string]("x"))
	defer c.Dispose()

	m, cmd := press(t, NewFieldModel(context.Background(), c, FieldMeta{}), tea.KeyEsc)
	if !m.Aborted() || cmd == nil {
		t.Fatalf("expected abort with quit command")
	}
}

func TestFieldModel_SecretMasksInput(t *testing.T) {
	c := field.New(field.WithName[string]("pw"), field.WithInitial("hunter2"))
	defer c.Dispose()

	m := NewFieldModel(context.Background(), c, FieldMeta{Secret: true, Help: "keep it safe"})
	view := m.View()
	if strings.Contains(view, "hunter2") {
		t.Fatalf("secret leaked:\n%s", view)
	}
	if !strings.Contains(view, "keep it safe") {
		t.Fatalf("help missing:\n%s", view)
	}
	if !strings.Contains(view, "pw") {
		t.Fatalf("label should fall back to the field name:\n%s", view)
	}
}

func TestFieldModel_EnterDoesNotBlockOnSlowRule(t *testing.T) {
	release := make(chan struct{})
	slow := rules.Async(func(ctx context.Context, _ string) (bool, error) {
		select {
		case <-release:
			return true, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}, "unavailable")
	c := field.New(
		field.WithName[string]("handle"),
		field.WithInitial("ada"),
		field.WithRules(slow),
		field.WithValidateOnBlur[string](false),
	)
	defer c.Dispose()

	m := NewFieldModel(context.Background(), c, FieldMeta{})
	m, cmd := press(t, m, tea.KeyEnter)
	if cmd == nil || m.Submitted() {
		t.Fatalf("Enter should hand validation to a command")
	}
	if again, extra := press(t, m, tea.KeyEnter); extra != nil || again.Submitted() {
		t.Fatalf("second Enter while validating should be ignored")
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	close(release)

	next, quit := m.Update(<-done)
	if !next.(FieldModel).Submitted() || quit == nil {
		t.Fatalf("expected submission once the rule resolved")
	}
}
