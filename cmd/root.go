// Package cmd implements the pvsim command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvsim/config"
	coremon "github.com/kilianp07/pvsim/core/monitoring"
	"github.com/kilianp07/pvsim/infra/logger"
	"github.com/kilianp07/pvsim/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "pvsim",
	Short:         "Household PV, heat pump and battery dispatch simulator",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Configure(cfg.Logging.Level, cfg.Logging.Console)
	lc := cfg.Logging
	if err := logger.RotateTo(lc.File, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays); err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	coremon.Init(mon)
	return cfg, nil
}
