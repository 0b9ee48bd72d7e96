/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/barrel/core/config"
	"github.com/tristendillon/barrel/core/logger"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init [root]",
	Short: "Write a default barrel.yaml",
	Long:  `Creates barrel.yaml in the current directory (or at --config) with the default settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")
		path := configPath
		if path == "" {
			path = config.FileName
		}

		cfg := config.Default()
		if len(args) > 0 {
			cfg.Root = args[0]
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := config.Write(path, cfg, force); err != nil {
			if !force {
				return fmt.Errorf("%w. Use --force to overwrite", err)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Next Steps:\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  - barrel generate\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
}
