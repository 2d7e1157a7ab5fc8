package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/logdoctor/pkg/config"
	"github.com/ethpandaops/logdoctor/pkg/report"
	"github.com/ethpandaops/logdoctor/pkg/ui"
)

// NewReportsCommand creates the reports command.
func NewReportsCommand(log logrus.FieldLogger, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse saved analysis reports",
	}

	cmd.AddCommand(newReportsListCommand(log, configPath))
	cmd.AddCommand(newReportsShowCommand(log, configPath))

	return cmd
}

func newReportsListCommand(log logrus.FieldLogger, configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent analysis reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(log, configPath)
			if err != nil {
				return err
			}

			reports, err := store.List(limit)
			if err != nil {
				return fmt.Errorf("failed to list reports: %w", err)
			}

			if len(reports) == 0 {
				ui.Info("No analysis reports found")

				return nil
			}

			rows := make([][]string, 0, len(reports))

			for _, r := range reports {
				rows = append(rows, []string{
					r.ID,
					r.CreatedAt.Format(time.RFC3339),
					r.Source,
					strconv.Itoa(len(r.Results)),
				})
			}

			ui.Table([]string{"ID", "Created", "Source", "Findings"}, rows)

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of reports to list")

	return cmd
}

func newReportsShowCommand(log logrus.FieldLogger, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [report-id]",
		Short: "Show a saved report (latest when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(log, configPath)
			if err != nil {
				return err
			}

			var r *report.AnalysisReport

			if len(args) == 1 {
				r, err = store.Load(args[0])
			} else {
				r, err = store.Latest()
			}

			if err != nil {
				return fmt.Errorf("no report available: %w", err)
			}

			ui.DisplayReport(r)

			return nil
		},
	}
}

func openStore(log logrus.FieldLogger, configPath *string) (*report.Store, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	retention := time.Duration(cfg.Reports.RetentionDays) * 24 * time.Hour

	return report.NewStore(log, cfg.Reports.Dir, retention), nil
}
