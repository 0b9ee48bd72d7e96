/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tristendillon/barrel/core/cache"
	"github.com/tristendillon/barrel/core/generator"
	"github.com/tristendillon/barrel/core/logger"
	"github.com/tristendillon/barrel/core/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Regenerates the barrel whenever source files change",
	Long:  "Runs one generation pass, then regenerates after each debounced batch of file changes until interrupted.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("watch called")
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		contentCache, err := cache.NewContentCache(cfg.Cache.MaxEntries)
		if err != nil {
			return err
		}
		bg := generator.NewBarrelGenerator(cfg)
		bg.Cache = contentCache

		fw, err := watcher.NewFileWatcher(cfg)
		if err != nil {
			return err
		}
		fw.Cache = contentCache
		fw.OnStart = func() error {
			_, err := bg.Generate()
			return err
		}
		fw.OnChange = func(changed []string) error {
			logger.Info("%d files changed, regenerating", len(changed))
			_, err := bg.Generate()
			return err
		}
		fw.OnClose = func() error {
			contentCache.LogStats()
			return nil
		}
		defer fw.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("Watching %s", fw.RootDir)
		return fw.Watch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
