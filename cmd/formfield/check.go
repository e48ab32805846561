package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type checkReport struct {
	Form   string            `yaml:"form"`
	Valid  bool              `yaml:"valid"`
	Errors map[string]string `yaml:"errors,omitempty"`
	Values map[string]any    `yaml:"values,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate values non-interactively and print a YAML report",
		Example: `  formfield check --config ./forms --form signup \
    --set email=ada@example.com --set password=hunter22`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			built, err := a.load(ctx)
			if err != nil {
				return err
			}
			defer built.Form.Dispose()

			values, err := parseAssignments(assignments)
			if err != nil {
				return err
			}
			if err := applyValues(built, values); err != nil {
				return err
			}

			valid := built.Form.Validate(ctx)
			if err := built.Form.Settle(ctx); err != nil {
				return fmt.Errorf("formfield: settle: %w", err)
			}

			report := checkReport{
				Form:  built.Def.Name,
				Valid: valid,
			}
			if valid {
				report.Values = built.Form.Values()
			} else {
				report.Errors = built.Form.Errors()
			}

			out, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("formfield: encode report: %w", err)
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}

			a.logger.Debug("check finished", zap.String("form", report.Form), zap.Bool("valid", valid))
			if !valid {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "Field value as name=value (repeatable)")
	return cmd
}
