package main

import (
	"fmt"

	"github.com/oricchiolab/scrnaseq-run/internal/release"
	"github.com/spf13/cobra"
)

func newCheckVersionCmd(global *globalOptions) *cobra.Command {
	var version string

	checkCmd := &cobra.Command{
		Use:   "check-version",
		Short: "Compare a pipeline release with the latest nf-core/scrnaseq release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, logger, err := global.load(cmd)
			if err != nil {
				return err
			}

			current := cfg.Pipeline.Version
			if cmd.Flags().Changed("version") {
				current = version
			}

			latest, err := release.NewChecker(cfg.Pipeline.ReleaseAPI).Latest(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if release.IsOutdated(current, latest.TagName) {
				fmt.Fprintf(out, "%s %s is available (using %s)\n", cfg.Pipeline.Workflow, latest.TagName, current)
				if latest.HTMLURL != "" {
					fmt.Fprintln(out, latest.HTMLURL)
				}
				logger.Debug("pipeline release outdated", "current", current, "latest", latest.TagName)
				return nil
			}
			fmt.Fprintf(out, "%s %s is up to date\n", cfg.Pipeline.Workflow, current)
			return nil
		},
	}
	checkCmd.Flags().StringVar(&version, "version", "", "release tag to check (default from config)")

	return checkCmd
}
