package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codewithboateng/storytest/internal/analysis"
	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/metrics"
	"github.com/codewithboateng/storytest/internal/parser"
	"github.com/codewithboateng/storytest/internal/reporting"
	"github.com/codewithboateng/storytest/internal/rules"
	"github.com/codewithboateng/storytest/internal/rulesdsl"
	"github.com/codewithboateng/storytest/internal/shared"
	"github.com/codewithboateng/storytest/internal/storage"
)

type analyzeFlags struct {
	out         string
	formats     []string
	workers     int
	failOn      bool
	packs       []string
	metricsFile string
}

func analyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze unit manifests and write reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f.apply(&cfg, args)

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := analyze(ctx, cfg, reg, db, slog.Default())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), res)
			if f.failOn && res.Report.HasViolations() {
				return errViolations
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.out, "out", "", "Output directory for reports (default from config)")
	fl.StringSliceVar(&f.formats, "format", nil, "Report formats: json, text, html")
	fl.IntVar(&f.workers, "workers", 0, "Parallel symbol workers (0 = config or GOMAXPROCS)")
	fl.BoolVar(&f.failOn, "fail-on-violations", false, "Exit 1 when any violation is reported")
	fl.StringSliceVar(&f.packs, "rules-pack", nil, "Extra YAML rule packs to load")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here")
	return cmd
}

func (f analyzeFlags) apply(cfg *shared.Config, args []string) {
	if len(args) > 0 {
		cfg.Analysis.Sources = args
	}
	if f.out != "" {
		cfg.Reporting.OutDir = f.out
	}
	if len(f.formats) > 0 {
		cfg.Reporting.Formats = f.formats
	}
	if f.workers > 0 {
		cfg.Analysis.Workers = f.workers
	}
	cfg.Rules.Packs = append(cfg.Rules.Packs, f.packs...)
	if f.metricsFile != "" {
		cfg.Metrics.Textfile = f.metricsFile
	}
}

// buildRegistry registers the built-in rules and every configured pack.
func buildRegistry(cfg shared.Config) (*rules.Registry, error) {
	reg := rules.NewRegistry()
	if err := rules.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	for _, p := range cfg.Rules.Packs {
		n, err := rulesdsl.LoadAndRegister(reg, p)
		if err != nil {
			return nil, fmt.Errorf("rules pack %s: %w", p, err)
		}
		slog.Debug("rules pack loaded", "path", p, "rules", n)
	}
	return reg, nil
}

type analyzeResult struct {
	Run    *ir.Run
	Report *reporting.Report
	Files  []string
}

// analyze runs one full pass: parse, apply stored exemptions, analyze,
// persist, write reports.
func analyze(ctx context.Context, cfg shared.Config, reg *rules.Registry, db *storage.DB, log *slog.Logger) (*analyzeResult, error) {
	if len(cfg.Analysis.Sources) == 0 {
		return nil, fmt.Errorf("no sources: pass a path or set analysis.sources")
	}
	filter, err := cfg.Filter()
	if err != nil {
		return nil, err
	}
	settings := cfg.RuleSettings()

	var units []*ir.Unit
	popts := parser.Options{ExemptionMarker: settings.Naming.ExemptionMarker}
	for _, src := range cfg.Analysis.Sources {
		us, diags := parser.Parse(src, popts)
		for _, w := range diags.Warnings {
			log.Warn("parse", "source", src, "warning", w)
		}
		units = append(units, us...)
	}

	records, err := db.ListExemptions(true)
	if err != nil {
		return nil, err
	}
	started := time.Now().UTC()
	if n := parser.ApplyExemptions(units, records, started); n > 0 {
		log.Info("stored exemptions applied", "symbols", n)
	}

	mc := metrics.New()
	rep, err := analysis.Run(ctx, units, analysis.Options{
		Registry: reg,
		Settings: settings,
		Filter:   filter,
		Workers:  cfg.Analysis.Workers,
		Logger:   log,
		Metrics:  mc,
	})
	if err != nil {
		return nil, err
	}

	run := &ir.Run{
		ID:        uuid.NewString(),
		StartedAt: started,
		Source:    strings.Join(cfg.Analysis.Sources, ","),
		IRVersion: ir.Version,
		Context: ir.Context{
			Units:             unitNames(units),
			SeverityThreshold: string(settings.SeverityThreshold),
			DisabledRules:     sortedKeys(settings.Disabled),
			EnabledRules:      sortedKeys(settings.Enabled),
		},
		Violations: rep.Violations,
	}
	if err := db.SaveRun(run); err != nil {
		return nil, err
	}

	files, err := writeReports(cfg.Reporting.OutDir, cfg.Reporting.Formats, run, rep, reg)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.Textfile != "" {
		if err := mc.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("metrics textfile", "path", cfg.Metrics.Textfile, "err", err)
		}
	}
	return &analyzeResult{Run: run, Report: rep, Files: files}, nil
}

func writeReports(outDir string, formats []string, run *ir.Run, rep *reporting.Report, reg *rules.Registry) ([]string, error) {
	var files []string
	for _, format := range formats {
		var (
			p   string
			err error
		)
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "json":
			p, err = reporting.WriteJSON(run.ID, outDir, run, rep)
		case "text":
			p, err = reporting.WriteText(run.ID, outDir, rep)
		case "html":
			p, err = reporting.WriteHTML(run.ID, outDir, run, rep, reg)
		default:
			return files, fmt.Errorf("unknown report format %q", format)
		}
		if err != nil {
			return files, fmt.Errorf("write %s report: %w", format, err)
		}
		files = append(files, p)
	}
	return files, nil
}

func printSummary(w io.Writer, res *analyzeResult) {
	s := res.Report.Summary
	fmt.Fprintf(w, "Analyze OK  run=%s violations=%d high=%d medium=%d low=%d\n",
		res.Run.ID, s.Total,
		s.BySeverity[ir.SeverityHigh], s.BySeverity[ir.SeverityMedium], s.BySeverity[ir.SeverityLow])
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
}

func unitNames(units []*ir.Unit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.Name)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func sortedKeys(m map[string]bool) []string {
	var out []string
	for k, on := range m {
		if on {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
