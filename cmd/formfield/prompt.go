package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfield/pkg/config"
	"github.com/goliatone/go-formfield/pkg/renderers/tui"
)

func newPromptCmd(a *app) *cobra.Command {
	var (
		ui      string
		format  string
		confirm bool
		retries int
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill a form interactively, validating each answer as it is entered",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			built, err := a.load(ctx)
			if err != nil {
				return err
			}
			defer built.Form.Dispose()

			meta := promptMeta(built)

			var out []byte
			switch strings.ToLower(ui) {
			case "tea", "bubbletea":
				out, err = a.promptTea(ctx, built, meta)
			case "", "survey":
				r := tui.New(
					tui.WithPromptDriver(tui.NewSurveyDriver(nil, nil)),
					tui.WithOutputFormat(tui.OutputFormat(format)),
					tui.WithConfirmSubmit(confirm),
					tui.WithMaxAttempts(retries),
					tui.WithLogger(a.logger),
				)
				out, err = r.Run(ctx, built.Form, meta)
			default:
				return fmt.Errorf("formfield: unknown --ui %q", ui)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&ui, "ui", "survey", "Prompt style: survey or tea")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "Output format: json, form or pretty (survey only)")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Ask for confirmation before printing values")
	cmd.Flags().IntVar(&retries, "max-attempts", 0, "Give up after this many invalid answers per field (0 = unlimited)")
	return cmd
}

func (a *app) promptTea(ctx context.Context, built *config.Built, meta map[string]tui.FieldMeta) ([]byte, error) {
	for _, def := range built.Def.Fields {
		c, ok := built.Controller(def.Name)
		if !ok {
			continue
		}
		if _, err := tui.PromptField(ctx, c, meta[def.Name]); err != nil {
			return nil, err
		}
		a.logger.Debug("field accepted", zap.String("field", def.Name))
	}
	if !built.Form.Validate(ctx) {
		return nil, errInvalid
	}
	return json.Marshal(built.Form.Values())
}

// promptMeta derives prompt hints from the definitions. A oneOf rule turns
// the prompt into a select.
func promptMeta(built *config.Built) map[string]tui.FieldMeta {
	meta := make(map[string]tui.FieldMeta, len(built.Def.Fields))
	for _, def := range built.Def.Fields {
		m := tui.FieldMeta{
			Label:  def.DisplayLabel(),
			Help:   def.Help,
			Secret: def.Secret,
		}
		for _, rule := range def.Rules {
			if strings.EqualFold(rule.Kind, "oneOf") && len(rule.Values) > 0 {
				m.Options = append([]string(nil), rule.Values...)
			}
		}
		meta[def.Name] = m
	}
	return meta
}
