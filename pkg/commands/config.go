package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/logdoctor/pkg/config"
	"github.com/ethpandaops/logdoctor/pkg/ui"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(log logrus.FieldLogger, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View, validate, and initialize configuration.`,
	}

	// config show subcommand
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			fmt.Println(string(data))

			return nil
		},
	})

	// config validate subcommand
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := cfg.Validate(); err != nil {
				ui.Error("Configuration is invalid: " + err.Error())

				return err
			}

			ui.Success("Configuration is valid")
			ui.Info(fmt.Sprintf("Min confidence: %d", cfg.Analysis.MinConfidence))
			ui.Info(fmt.Sprintf("Reports dir: %s", cfg.Reports.Dir))

			return nil
		},
	})

	// config init subcommand
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(*configPath); err == nil {
				return fmt.Errorf("config file already exists: %s", *configPath)
			}

			if err := config.Default().Save(*configPath); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			ui.Success("Wrote default configuration to " + *configPath)

			return nil
		},
	})

	return cmd
}
