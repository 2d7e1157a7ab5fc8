package commands

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/logdoctor/pkg/config"
	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
	"github.com/ethpandaops/logdoctor/pkg/patterns"
	"github.com/ethpandaops/logdoctor/pkg/ui"
)

// NewPatternsCommand creates the patterns command.
func NewPatternsCommand(log logrus.FieldLogger, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and validate diagnostic patterns",
	}

	cmd.AddCommand(newPatternsListCommand(log, configPath))
	cmd.AddCommand(newPatternsShowCommand(log, configPath))
	cmd.AddCommand(newPatternsValidateCommand(log))

	return cmd
}

func newPatternsListCommand(log logrus.FieldLogger, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all loaded patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, warnings, err := loadConfiguredPatterns(log, configPath)
			if err != nil {
				return err
			}

			for _, warning := range warnings {
				ui.Warning(warning)
			}

			rows := make([][]string, 0, len(set.Patterns))

			for i := range set.Patterns {
				pattern := &set.Patterns[i]
				rows = append(rows, []string{
					pattern.ID,
					string(pattern.Severity),
					pattern.Category,
					strconv.Itoa(len(pattern.Matchers)),
					pattern.Name,
				})
			}

			ui.Table([]string{"ID", "Severity", "Category", "Matchers", "Name"}, rows)
			ui.Blank()
			ui.Info(fmt.Sprintf("%d patterns loaded", len(set.Patterns)))

			return nil
		},
	}
}

func newPatternsShowCommand(log logrus.FieldLogger, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pattern-id>",
		Short: "Show one pattern in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, _, err := loadConfiguredPatterns(log, configPath)
			if err != nil {
				return err
			}

			for i := range set.Patterns {
				pattern := &set.Patterns[i]
				if pattern.ID != args[0] {
					continue
				}

				displayPattern(pattern)

				return nil
			}

			return fmt.Errorf("pattern not found: %s", args[0])
		},
	}
}

func newPatternsValidateCommand(log logrus.FieldLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pattern-file...>",
		Short: "Validate pattern definition files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := patterns.NewLoader(log, nil)
			failed := false

			for _, path := range args {
				set, warnings, err := loader.LoadFile(path)
				if err != nil {
					ui.Error(fmt.Sprintf("%s: %v", path, err))

					failed = true

					continue
				}

				for _, warning := range warnings {
					ui.Warning(fmt.Sprintf("%s: %s", path, warning))
				}

				ui.Success(fmt.Sprintf("%s: %d patterns valid", path, len(set.Patterns)))
			}

			if failed {
				return fmt.Errorf("validation failed")
			}

			return nil
		},
	}
}

func loadConfiguredPatterns(log logrus.FieldLogger, configPath *string) (*diagnostic.PatternSet, []string, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return loadPatternSet(log, nil, cfg)
}

func displayPattern(pattern *diagnostic.Pattern) {
	ui.Header(fmt.Sprintf("%s (%s)", pattern.ID, pattern.Severity))

	if pattern.Description != "" {
		fmt.Println(pattern.Description)
	}

	ui.Blank()

	for i := range pattern.Matchers {
		matcher := &pattern.Matchers[i]
		flags := ""

		if matcher.Multiline {
			flags += " multiline"
		}

		if matcher.CaseSensitive {
			flags += " case-sensitive"
		}

		fmt.Printf("  matcher %d (%d%%%s): %s\n", i+1, matcher.Confidence, flags, matcher.Regex)

		if len(matcher.Captures) > 0 {
			fmt.Printf("    captures: %v\n", matcher.Captures)
		}
	}

	for i := range pattern.Solutions {
		solution := &pattern.Solutions[i]

		ui.Blank()
		fmt.Printf("  solution %q (priority %d): %s\n", solution.ID, solution.Priority, solution.Title)

		for _, step := range solution.Steps {
			fmt.Printf("    • %s\n", step)
		}
	}
}
