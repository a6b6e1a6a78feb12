package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(newCommandContext(nil))
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "envschema",
		Short:         "Validate environment variables against a schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.schemaFlag, "schema", "s", defaultSchemaPath, "Schema document (YAML, JSON or TOML)")
	flags.StringVarP(&ctx.envFileFlag, "env-file", "e", "", "Supplementary env file (.env, YAML, JSON or TOML)")
	flags.StringVar(&ctx.prefixFlag, "prefix", "", "Only read process variables with this prefix (stripped)")
	flags.StringSliceVar(&ctx.ignoreFlag, "ignore", nil, "Extra prefixes exempt from unused-variable warnings")
	flags.BoolVarP(&ctx.verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newDumpCommand(ctx))
	rootCmd.AddCommand(newSnapshotCommand(ctx))
	rootCmd.AddCommand(newSchemaCommand(ctx))
	rootCmd.AddCommand(newGenCommand(ctx))

	return rootCmd
}
