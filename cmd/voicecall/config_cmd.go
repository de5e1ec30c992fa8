package main

import (
	"fmt"

	"github.com/aarambhveda/counselor/internal/config"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

func newConfigCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective client configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadClientConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			out, err := yaml.Marshal(redacted(*cfg))
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// redacted hides secrets before printing
func redacted(cfg config.Config) config.Config {
	if cfg.ElevenLabs.APIKey != "" {
		cfg.ElevenLabs.APIKey = "********"
	}
	if cfg.Functions.AnonKey != "" {
		cfg.Functions.AnonKey = "********"
	}
	if cfg.Server.AdminToken != "" {
		cfg.Server.AdminToken = "********"
	}
	return cfg
}
