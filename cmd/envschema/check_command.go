package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Azhovan/envschema"
)

type checkResult struct {
	Valid    bool                        `json:"valid"`
	Resolved int                         `json:"resolved"`
	Errors   []checkFailure              `json:"errors,omitempty"`
	Unused   []string                    `json:"unused,omitempty"`
	Sources  []envschema.FieldProvenance `json:"sources,omitempty"`
}

type checkFailure struct {
	Variable string `json:"variable"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the environment and report every failing variable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(cmd.Context(), cmd, true)

			var ve *envschema.ValidationError
			if err != nil && !errors.As(err, &ve) {
				return err
			}

			result := checkResult{Valid: err == nil}
			if ve != nil {
				for _, fe := range ve.FieldErrors {
					result.Errors = append(result.Errors, checkFailure{
						Variable: fe.Key,
						Code:     fe.Code,
						Message:  fe.Message,
					})
				}
			} else {
				result.Resolved = len(cfg.Keys())
				result.Unused = cfg.Unused()
				result.Sources = cfg.Provenance()
			}

			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				printCheckResult(cmd, result)
			}

			if !result.Valid {
				return fmt.Errorf("environment invalid: %d variable(s) failed validation", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	return cmd
}

func printCheckResult(cmd *cobra.Command, result checkResult) {
	out := cmd.OutOrStdout()
	rounded := isTerminal(out)

	if !result.Valid {
		rows := make([][]string, 0, len(result.Errors))
		for _, failure := range result.Errors {
			rows = append(rows, []string{failure.Variable, failure.Code, failure.Message})
		}
		fmt.Fprintln(out, renderTable([]string{"Variable", "Code", "Problem"}, rows, rounded))
		return
	}

	fmt.Fprintf(out, "Environment valid: %d variable(s) resolved\n", result.Resolved)
	if len(result.Unused) > 0 {
		fmt.Fprintf(out, "%d unused variable(s); see warnings above\n", len(result.Unused))
	}
}
