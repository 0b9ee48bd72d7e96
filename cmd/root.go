/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/barrel/core/config"
	"github.com/tristendillon/barrel/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "barrel",
	Short: "Generates an index barrel for a TypeScript source tree.",
	Long: `Barrel scans a TypeScript source tree and writes <root>/index.ts,
re-exporting every exported top-level declaration it finds so consumers
can import the whole tree from one module.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if info, err := os.Stdout.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
			logger.SetColor(false)
		}
		if dryRun {
			// stdout carries the barrel text
			logger.SetWriterForAll(cmd.ErrOrStderr())
		}
		if logfile != "" {
			f, err := logger.OpenLogFile(logfile)
			if err != nil {
				return err
			}
			logFile = f
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

var (
	configPath string
	logfile    string
	verbose    bool
	logFile    *os.File
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and lets an optional root argument
// override its root.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if len(args) > 0 {
		cfg.Root = args[0]
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./barrel.yaml)")
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
