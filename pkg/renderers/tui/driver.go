package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Question describes one prompt shown for a field.
type Question struct {
	Label   string
	Help    string
	Default string
	// Options lists the choices offered by Choose.
	Options []string
}

// PromptDriver asks questions on behalf of the renderer. Tests swap in a
// scripted driver; NewSurveyDriver talks to a real terminal.
type PromptDriver interface {
	Ask(ctx context.Context, q Question) (string, error)
	AskSecret(ctx context.Context, q Question) (string, error)
	AskMultiline(ctx context.Context, q Question) (string, error)
	// Choose returns the index of the selected option, or -1.
	Choose(ctx context.Context, q Question) (int, error)
	Confirm(ctx context.Context, message string, def bool) (bool, error)
	Notify(ctx context.Context, message string) error
}

type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyDriver returns a PromptDriver backed by survey. Nil streams fall
// back to the process stdio.
func NewSurveyDriver(in terminal.FileReader, out terminal.FileWriter) PromptDriver {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{
		out:  out,
		opts: []survey.AskOpt{survey.WithStdio(in, out, os.Stderr)},
	}
}

func (d *surveyDriver) Ask(ctx context.Context, q Question) (string, error) {
	return askOne[string](ctx, d, &survey.Input{Message: q.Label, Help: q.Help, Default: q.Default})
}

func (d *surveyDriver) AskSecret(ctx context.Context, q Question) (string, error) {
	return askOne[string](ctx, d, &survey.Password{Message: q.Label, Help: q.Help})
}

func (d *surveyDriver) AskMultiline(ctx context.Context, q Question) (string, error) {
	return askOne[string](ctx, d, &survey.Multiline{Message: q.Label, Help: q.Help, Default: q.Default})
}

func (d *surveyDriver) Choose(ctx context.Context, q Question) (int, error) {
	if len(q.Options) == 0 {
		return -1, fmt.Errorf("tui: %q has no options", q.Label)
	}
	prompt := &survey.Select{Message: q.Label, Help: q.Help, Options: q.Options}
	if indexOf(q.Options, q.Default) >= 0 {
		prompt.Default = q.Default
	}
	// survey writes the selected index when the target is an int
	return askOne[int](ctx, d, prompt)
}

func (d *surveyDriver) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	return askOne[bool](ctx, d, &survey.Confirm{Message: message, Default: def})
}

func (d *surveyDriver) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, message)
	return err
}

func askOne[V any](ctx context.Context, d *surveyDriver, prompt survey.Prompt) (V, error) {
	var answer V
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	err := survey.AskOne(prompt, &answer, d.opts...)
	switch {
	case err == nil:
		return answer, nil
	case errors.Is(err, terminal.InterruptErr):
		return answer, ErrAborted
	case ctx.Err() != nil:
		return answer, ctx.Err()
	default:
		return answer, fmt.Errorf("tui: prompt %T: %w", prompt, err)
	}
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
