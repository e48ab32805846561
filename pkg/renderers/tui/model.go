package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formfield/pkg/field"
)

var (
	labelStyle      = lipgloss.NewStyle().Bold(true)
	helpStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	validatingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// settledMsg is delivered once the controller has no pending pass.
type settledMsg struct{}

// validatedMsg carries the outcome of the pass started by Enter.
type validatedMsg struct {
	valid bool
}

// FieldModel is a bubbletea model binding a text input to a string
// controller. Keystrokes go through OnChange, Enter blurs and validates, and
// the committed error is shown once the field reports StatusError.
type FieldModel struct {
	ctx   context.Context
	field *field.Controller[string]
	input textinput.Model
	meta  FieldMeta

	raw        string
	submitting bool
	submitted  bool
	aborted    bool
}

// NewFieldModel focuses c and returns a model ready to run.
func NewFieldModel(ctx context.Context, c *field.Controller[string], meta FieldMeta) FieldModel {
	if ctx == nil {
		ctx = context.Background()
	}
	input := textinput.New()
	input.SetValue(c.Value())
	input.Prompt = "> "
	if meta.Secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	input.Focus()
	c.OnFocus()

	if strings.TrimSpace(meta.Label) == "" {
		meta.Label = c.Name()
	}

	return FieldModel{
		ctx:   ctx,
		field: c,
		input: input,
		meta:  meta,
		raw:   c.Value(),
	}
}

// Init implements tea.Model.
func (m FieldModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m FieldModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.submitting {
				return m, nil
			}
			m.submitting = true
			m.field.OnBlur()
			return m, m.validate()
		}
	case validatedMsg:
		m.submitting = false
		if msg.valid {
			m.submitted = true
			m.input.Blur()
			return m, tea.Quit
		}
		return m, nil
	case settledMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != m.raw {
		m.raw = value
		m.field.OnChange(value)
		return m, tea.Batch(cmd, m.waitSettled())
	}
	return m, cmd
}

// View implements tea.Model.
func (m FieldModel) View() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(m.meta.Label))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	state := m.field.State()
	switch {
	case state.Status() == field.StatusError:
		b.WriteString(errorStyle.Render(state.Error))
		b.WriteString("\n")
	case state.Validating:
		b.WriteString(validatingStyle.Render("validating…"))
		b.WriteString("\n")
	case m.meta.Help != "":
		b.WriteString(helpStyle.Render(m.meta.Help))
		b.WriteString("\n")
	}
	return b.String()
}

// Submitted reports whether the user confirmed a valid value.
func (m FieldModel) Submitted() bool {
	return m.submitted
}

// Aborted reports whether the user cancelled the prompt.
func (m FieldModel) Aborted() bool {
	return m.aborted
}

// validate runs the pass off the update loop so slow rules keep the UI
// responsive.
func (m FieldModel) validate() tea.Cmd {
	ctx, c := m.ctx, m.field
	return func() tea.Msg {
		return validatedMsg{valid: c.Validate(ctx)}
	}
}

func (m FieldModel) waitSettled() tea.Cmd {
	ctx, c := m.ctx, m.field
	return func() tea.Msg {
		_ = c.Settle(ctx)
		return settledMsg{}
	}
}

// PromptField runs a FieldModel program until the value validates or the
// user aborts.
func PromptField(ctx context.Context, c *field.Controller[string], meta FieldMeta, opts ...tea.ProgramOption) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(NewFieldModel(ctx, c, meta), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	model, ok := final.(FieldModel)
	if !ok || model.Aborted() || !model.Submitted() {
		return "", ErrAborted
	}
	return c.Value(), nil
}
