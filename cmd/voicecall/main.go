package main

import (
	"fmt"
	"os"

	"github.com/aarambhveda/counselor/internal/config"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "voicecall",
		Short:   "Talk to the Aarambh Veda counselor from the terminal",
		Version: Version,
		// call is the default action
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), configPath, cmd.InOrStdin(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (optional - will search in configs/ and root directory)")

	rootCmd.AddCommand(newCallCommand(&configPath), newConfigCommand(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadClientConfig(path string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}
