package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/body-trend-etl/internal/pipeline"
)

func (a *app) newCleanCmd() *cobra.Command {
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Strip carriage returns from a JSON file, keeping a .bak copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pipeline.Clean(args[0], !noBackup)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Changed {
				fmt.Fprintf(out, "%s %s has no carriage returns\n", color.GreenString("✓"), args[0])
				return nil
			}
			fmt.Fprintf(out, "%s cleaned %s (%d bytes removed)\n", color.GreenString("✓"), args[0], res.RemovedBytes)
			if res.BackupPath != "" {
				fmt.Fprintf(out, "  backup: %s\n", res.BackupPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not write <file>.bak")
	return cmd
}
