package main

import (
	"fmt"
	"os"

	"github.com/oricchiolab/scrnaseq-run/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the scrnaseq-run configuration file",
	}
	configCmd.AddCommand(newConfigInitCmd(global))
	return configCmd
}

func newConfigInitCmd(global *globalOptions) *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the config path",
		Long: `init writes the built-in defaults to --config, or to
~/.config/scrnaseq-run/config.toml when --config is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			path := config.DefaultConfigPath()
			if global.configPath != "" {
				path = config.ExpandPath(global.configPath)
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.Default().Save(path); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return initCmd
}
