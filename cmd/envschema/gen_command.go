package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Azhovan/envschema/typegen"
)

func newGenCommand(ctx *commandContext) *cobra.Command {
	var pkg string
	var typeName string
	var output string

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a Go struct and loader for the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := ctx.ensureSchema()
			if err != nil {
				return err
			}

			src, err := typegen.Generate(schema, typegen.Options{Package: pkg, TypeName: typeName})
			if err != nil {
				return err
			}

			target := strings.TrimSpace(output)
			if target == "" || target == "-" {
				_, err := cmd.OutOrStdout().Write(src)
				return err
			}

			if dir := filepath.Dir(target); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory %q: %w", dir, err)
				}
			}
			if err := os.WriteFile(target, src, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "config", "Package name of the generated file")
	cmd.Flags().StringVar(&typeName, "type", "Env", "Name of the generated struct")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
