package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/logdoctor/pkg/commands"
	"github.com/ethpandaops/logdoctor/pkg/constants"
	"github.com/ethpandaops/logdoctor/pkg/ui"
	"github.com/ethpandaops/logdoctor/pkg/version"
)

// Build-time variables set via ldflags.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

func init() {
	// Set package-level version variables from build flags
	version.Version = buildVersion
	version.Commit = buildCommit
	version.Date = buildDate
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	// Setup logger with conditional writer.
	// Logs are hidden by default and only shown when --verbose is enabled.
	logWriter := ui.NewConditionalWriter(os.Stderr, false)
	log := logrus.New()
	log.SetOutput(logWriter)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "logdoctor",
		Short: "Diagnose build failure logs against a library of known issue patterns",
		Long: `logdoctor scans build logs for known failure patterns and produces
ranked diagnoses with actionable remediation steps.`,
		Version: version.GetFullVersion(),
	}

	// Global flags
	var (
		configPath string
		logLevel   string
		verbose    bool
	)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", constants.DefaultConfigFile, "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (show all logs)")

	// Parse log level and configure verbose mode
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}

		log.SetLevel(level)

		// Enable log writer based on verbose flag
		logWriter.SetEnabled(verbose)

		return nil
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand(log, &configPath))
	rootCmd.AddCommand(commands.NewPatternsCommand(log, &configPath))
	rootCmd.AddCommand(commands.NewReportsCommand(log, &configPath))
	rootCmd.AddCommand(commands.NewConfigCommand(log, &configPath))

	// Execute
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
