// Package commands contains the cobra command definitions for logdoctor.
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ethpandaops/logdoctor/pkg/config"
	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
	"github.com/ethpandaops/logdoctor/pkg/report"
	"github.com/ethpandaops/logdoctor/pkg/ui"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(log logrus.FieldLogger, configPath *string) *cobra.Command {
	var (
		minConfidence     int
		disableCategories []string
		extraPatternPaths []string
		noBuiltin         bool
		jsonOutput        bool
		compactOutput     bool
		noSave            bool
		maxMatches        int
	)

	cmd := &cobra.Command{
		Use:   "analyze [log-file...]",
		Short: "Diagnose build failure logs",
		Long: `Scan one or more build logs for known failure patterns and print
ranked diagnoses with remediation steps.

Use "-" to read a log from stdin.

Examples:
  logdoctor analyze build.log
  logdoctor analyze build.log deploy.log      # analyzed concurrently
  kubectl logs my-pod | logdoctor analyze -
  logdoctor analyze --min-confidence 90 --json build.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Flags override config.
			if cmd.Flags().Changed("min-confidence") {
				cfg.Analysis.MinConfidence = minConfidence
			}

			if cmd.Flags().Changed("max-matches") {
				cfg.Analysis.MaxMatchesPerMatcher = maxMatches
			}

			if noBuiltin {
				cfg.Patterns.DisableBuiltin = true
			}

			cfg.Analysis.DisabledCategories = append(cfg.Analysis.DisabledCategories, disableCategories...)
			cfg.Patterns.Paths = append(cfg.Patterns.Paths, extraPatternPaths...)

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			compiler := diagnostic.NewCompiler(log, cfg.Analysis.CacheSize)

			set, warnings, err := loadPatternSet(log, compiler, cfg)
			if err != nil {
				ui.Error("Pattern configuration is broken: " + err.Error())

				return err
			}

			if !jsonOutput {
				for _, warning := range warnings {
					ui.Warning(warning)
				}
			}

			if len(set.Patterns) == 0 {
				ui.Warning("No patterns loaded, nothing to diagnose with")
			}

			engine := diagnostic.NewEngine(log, compiler)
			engine.SetSegmentation(cfg.Analysis.SegmentSize, cfg.Analysis.SegmentOverlap)

			// Analyze all logs concurrently; each call is independent and
			// the engine is safe for concurrent use.
			reports := make([]*report.AnalysisReport, len(args))

			g, _ := errgroup.WithContext(cmd.Context())

			for i, arg := range args {
				i, arg := i, arg

				g.Go(func() error {
					text, source, readErr := readLog(arg)
					if readErr != nil {
						return readErr
					}

					r := report.New(source)
					started := time.Now()

					r.Results = engine.Analyze(text, set, cfg.Options())
					r.Duration = time.Since(started)
					r.LogBytes = len(text)
					r.PatternCount = len(set.Patterns)
					r.Warnings = warnings

					reports[i] = r

					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return fmt.Errorf("failed to analyze logs: %w", err)
			}

			store := report.NewStore(log, cfg.Reports.Dir, time.Duration(cfg.Reports.RetentionDays)*24*time.Hour)

			for _, r := range reports {
				switch {
				case jsonOutput:
					encoder := json.NewEncoder(os.Stdout)
					encoder.SetIndent("", "  ")

					if err := encoder.Encode(r); err != nil {
						return fmt.Errorf("failed to encode report: %w", err)
					}
				case compactOutput:
					ui.Section(fmt.Sprintf("Diagnosis: %s", r.Source))
					ui.DisplayResultsTable(r.Results)
				default:
					ui.DisplayReport(r)
				}

				if !noSave && !cfg.Reports.Disabled {
					if err := store.Save(r); err != nil {
						log.WithError(err).Warn("failed to save analysis report")
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&minConfidence, "min-confidence", 0, "Drop matchers below this confidence (0-100)")
	cmd.Flags().StringSliceVar(&disableCategories, "disable-category", nil, "Pattern categories to exclude (repeatable)")
	cmd.Flags().StringSliceVarP(&extraPatternPaths, "patterns", "p", nil, "Additional pattern files to load (repeatable)")
	cmd.Flags().BoolVar(&noBuiltin, "no-builtin", false, "Skip the builtin pattern library")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit reports as JSON instead of formatted output")
	cmd.Flags().BoolVar(&compactOutput, "compact", false, "Show findings as a one-line-per-issue table")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not persist analysis reports")
	cmd.Flags().IntVar(&maxMatches, "max-matches", 0, "Max occurrences kept per matcher per segment (0 = unlimited)")

	return cmd
}
