/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/barrel/core/config"
	"github.com/tristendillon/barrel/core/generator"
	"github.com/tristendillon/barrel/core/logger"
)

var (
	skipParseErrors bool
	dryRun          bool
	ordering        string
)

var generateCmd = &cobra.Command{
	Use:   "generate [root]",
	Short: "Generates the barrel file for a source tree",
	Long: `Scans root (default from barrel.yaml, else ./src) and overwrites
root/index.ts with re-exports of every exported top-level declaration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("generate called")
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		if skipParseErrors {
			cfg.OnParseError = config.ParseSkip
		}
		if cmd.Flags().Changed("ordering") {
			cfg.Ordering = config.Ordering(ordering)
		}

		bg := generator.NewBarrelGenerator(cfg)
		if dryRun {
			result, err := bg.Render()
			if err != nil {
				return fmt.Errorf("failed to generate barrel: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		}

		if _, err := bg.Generate(); err != nil {
			return fmt.Errorf("failed to generate barrel: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&skipParseErrors, "skip-parse-errors", false, "Leave unparseable modules out instead of failing")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the barrel to stdout without writing it")
	generateCmd.Flags().StringVar(&ordering, "ordering", string(config.OrderNative), "Directory entry order: native or lexical")
}
