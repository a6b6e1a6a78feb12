package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Azhovan/envschema"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var exclude []string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a JSON snapshot of the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}

			snapshot, err := envschema.CreateSnapshot(cfg, envschema.WithExclude(exclude...))
			if err != nil {
				return err
			}

			path, err := envschema.WriteSnapshot(snapshot, outPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote snapshot to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "envschema-snapshot-{{timestamp}}.json", "Snapshot path; {{timestamp}} expands to the snapshot time")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Variables to leave out of the snapshot")
	return cmd
}
