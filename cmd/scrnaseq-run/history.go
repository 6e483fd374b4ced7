package main

import (
	"fmt"
	"os"

	"github.com/oricchiolab/scrnaseq-run/internal/display"
	"github.com/oricchiolab/scrnaseq-run/internal/domain"
	"github.com/oricchiolab/scrnaseq-run/internal/runstore"
	"github.com/spf13/cobra"
)

func newHistoryCmd(global *globalOptions) *cobra.Command {
	var (
		limit  int
		status string
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previous pipeline launches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := global.load(cmd)
			if err != nil {
				return err
			}

			switch domain.RunStatus(status) {
			case "", domain.RunRunning, domain.RunLaunched, domain.RunSucceeded, domain.RunFailed:
			default:
				return fmt.Errorf("unknown status %q", status)
			}

			store, err := runstore.New(cfg.General.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(runstore.ListOptions{
				Status: domain.RunStatus(status),
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color := false
			if f, ok := out.(*os.File); ok {
				color = display.IsTerminal(f)
			}
			display.NewPrinter(out, color).History(runs)
			return nil
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show (0 for all)")
	historyCmd.Flags().StringVar(&status, "status", "", "filter by status: running, launched, succeeded, failed")

	return historyCmd
}
