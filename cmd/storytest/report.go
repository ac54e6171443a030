package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/storytest/internal/analysis"
	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/reporting"
	"github.com/codewithboateng/storytest/internal/storage"
)

func reportCmd() *cobra.Command {
	var (
		runID   string
		out     string
		formats []string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render reports for a stored run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if out != "" {
				cfg.Reporting.OutDir = out
			}
			if len(formats) > 0 {
				cfg.Reporting.Formats = formats
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			run, err := loadRun(db, runID)
			if err != nil {
				return err
			}
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			rep := reporting.Aggregate(run.Violations, reporting.WithRuleOrder(analysis.RuleOrder(reg)))
			files, err := writeReports(cfg.Reporting.OutDir, cfg.Reporting.Formats, &run, rep, reg)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), &analyzeResult{Run: &run, Report: rep, Files: files})
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run ID (default: latest)")
	cmd.Flags().StringVar(&out, "out", "", "Output directory (default from config)")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "Report formats: json, text, html")
	return cmd
}

func diffCmd() *cobra.Command {
	var base, head, out string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare two stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if base == "" {
				return fmt.Errorf("--base is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if out != "" {
				cfg.Reporting.OutDir = out
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			b, err := loadRun(db, base)
			if err != nil {
				return err
			}
			h, err := loadRun(db, head)
			if err != nil {
				return err
			}
			p, err := reporting.WriteDiffJSON(b.ID, h.ID, cfg.Reporting.OutDir, &b, &h)
			if err != nil {
				return err
			}
			d := reporting.Diff(b.ID, h.ID, &b, &h)
			fmt.Fprintf(cmd.OutOrStdout(), "Diff OK  new=%d removed=%d changed=%d\n  %s\n",
				d.Summary.NewCount, d.Summary.RemovedCount, d.Summary.ChangedCount, p)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "Base run ID")
	cmd.Flags().StringVar(&head, "head", "", "Head run ID (default: latest)")
	cmd.Flags().StringVar(&out, "out", "", "Output directory (default from config)")
	return cmd
}

func loadRun(db *storage.DB, id string) (ir.Run, error) {
	var (
		run ir.Run
		err error
	)
	if id == "" {
		run, err = db.LoadLatestRun()
	} else {
		run, err = db.LoadRun(id)
	}
	if err != nil {
		if id == "" {
			id = "latest"
		}
		return run, fmt.Errorf("load run %s: %w", id, err)
	}
	return run, nil
}
