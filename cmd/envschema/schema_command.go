package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Azhovan/envschema"
)

func newSchemaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List the variables declared by the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := ctx.ensureSchema()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(schema))
			for _, key := range schema.Keys() {
				d := schema[key]
				rows = append(rows, []string{
					key,
					d.Type.String(),
					strconv.FormatBool(d.Required),
					defaultString(d),
					strconv.FormatBool(d.Secret),
					d.Description,
				})
			}

			out := cmd.OutOrStdout()
			headers := []string{"Variable", "Type", "Required", "Default", "Secret", "Description"}
			fmt.Fprintln(out, renderTable(headers, rows, isTerminal(out)))
			return nil
		},
	}
}

func defaultString(d envschema.Descriptor) string {
	if d.Default == nil {
		return ""
	}
	if d.Secret {
		return envschema.Redacted
	}
	if v, ok := envschema.ValueOf(d.Default, d.Type); ok {
		return v.String()
	}
	return fmt.Sprint(d.Default)
}
