package main

import (
	"path/filepath"

	"github.com/oricchiolab/scrnaseq-run/internal/domain"
	"github.com/oricchiolab/scrnaseq-run/internal/logwatch"
	"github.com/spf13/cobra"
)

func newLogsCmd(global *globalOptions) *cobra.Command {
	var follow bool

	logsCmd := &cobra.Command{
		Use:   "logs OUTDIR",
		Short: "Print the nextflow log of a launch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			req := domain.Request{Outdir: args[0]}
			path := filepath.Join(req.LogDir(), "nextflow.log")

			if follow {
				return logwatch.Follow(cmd.Context(), cmd.OutOrStdout(), path)
			}
			return logwatch.Print(cmd.OutOrStdout(), path)
		},
	}
	logsCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing as the log grows")

	return logsCmd
}
