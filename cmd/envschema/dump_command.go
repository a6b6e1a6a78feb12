package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Azhovan/envschema"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var format string
	var withSources bool
	var withUnset bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}

			var opts []envschema.DumpOption
			if withSources {
				opts = append(opts, envschema.WithSources())
			}
			if withUnset {
				opts = append(opts, envschema.WithUnset())
			}

			switch strings.ToLower(strings.TrimSpace(format)) {
			case "table", "":
				fmt.Fprintln(cmd.OutOrStdout(), renderConfigTable(cfg, withUnset, isTerminal(cmd.OutOrStdout())))
				return nil
			case "text":
				return envschema.DumpEffective(cmd.OutOrStdout(), cfg, opts...)
			case "json":
				return envschema.DumpEffective(cmd.OutOrStdout(), cfg, append(opts, envschema.AsJSON())...)
			default:
				return fmt.Errorf("unknown format %q (expected table, text or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, text or json")
	cmd.Flags().BoolVar(&withSources, "sources", false, "Include the source of each value (text and json)")
	cmd.Flags().BoolVar(&withUnset, "unset", false, "Include declared variables without a value")
	return cmd
}

func renderConfigTable(cfg *envschema.Config, withUnset bool, rounded bool) string {
	schema := cfg.Schema()

	keys := cfg.Keys()
	if withUnset {
		keys = schema.Keys()
	}

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		value := "<not set>"
		source := ""
		if v, ok := cfg.Lookup(key); ok {
			value = v.String()
			if schema[key].Secret {
				value = envschema.Redacted
			}
			source, _ = cfg.SourceOf(key)
		}
		rows = append(rows, []string{key, schema[key].Type.String(), value, source})
	}

	return renderTable([]string{"Variable", "Type", "Value", "Source"}, rows, rounded)
}
