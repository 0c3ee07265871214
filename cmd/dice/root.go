package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dicelabs/dice-engine/internal/config"
	"github.com/dicelabs/dice-engine/internal/modes"
	"github.com/dicelabs/dice-engine/internal/store"
)

// #region root

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "dice",
	Short: "Multi-perspective lecture extraction scheduler",
	Long: "dice schedules six extraction facets (how/what/when/where/who/why) over\n" +
		"lecture segments, accumulating per-thread evidence and adapting facet order\n" +
		"to discipline weighting, stability mode, and collapse detection.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
}

// #endregion root

// #region helpers

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func openStore(cfg config.Config) (*store.Store, error) {
	path := cfg.Engine.DBPath
	if dbPath != "" {
		path = dbPath
	}
	return store.NewStore(path)
}

func newResolver(cfg config.Config) (*modes.Resolver, error) {
	overrides, err := cfg.WeightOverrides()
	if err != nil {
		return nil, err
	}
	return modes.NewResolver(overrides)
}

func parseMode(cfg config.Config, flagValue string) (modes.Mode, error) {
	name := cfg.Engine.Mode
	if flagValue != "" {
		name = flagValue
	}
	mode, err := modes.ParseMode(name)
	if err != nil {
		return "", fmt.Errorf("invalid mode: %w", err)
	}
	return mode, nil
}

// #endregion helpers
